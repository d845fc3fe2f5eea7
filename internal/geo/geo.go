// Package geo holds the coordinate type shared by the geocoding, weather and
// attractions packages.
package geo

import (
	"fmt"
	"math"
)

const earthRadiusKM = 6371.0

// Coordinates is a WGS84 latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether both components are within WGS84 bounds.
func (c Coordinates) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.5f,%.5f", c.Latitude, c.Longitude)
}

// FromPair builds Coordinates only when both values are present.
func FromPair(lat, lon *float64) (Coordinates, bool) {
	if lat == nil || lon == nil {
		return Coordinates{}, false
	}
	c := Coordinates{Latitude: *lat, Longitude: *lon}
	return c, c.Valid()
}

// DistanceKM returns the great-circle distance between a and b using the
// haversine formula.
func DistanceKM(a, b Coordinates) float64 {
	dLat := radians(b.Latitude - a.Latitude)
	dLon := radians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(a.Latitude))*math.Cos(radians(b.Latitude))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKM * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
