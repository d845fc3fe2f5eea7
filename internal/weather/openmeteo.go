package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/neexbeast/tripplanner/internal/geo"
	"github.com/neexbeast/tripplanner/internal/upstream"
)

const (
	openMeteoDefaultURL = "https://api.open-meteo.com/v1/forecast"
	dailyFields         = "temperature_2m_max,temperature_2m_min,precipitation_sum,weathercode,windspeed_10m_max"
	outOfRange          = "out of allowed range"
)

var allowedWindow = regexp.MustCompile(`from\s+(\d{4}-\d{2}-\d{2})\s+to\s+(\d{4}-\d{2}-\d{2})`)

// Client fetches forecasts from Open-Meteo.
type Client struct {
	baseURL string
	client  *upstream.Client
	log     *slog.Logger
	now     func() time.Time
}

// NewClient constructs a Client using the production URL.
func NewClient(timeout time.Duration, log *slog.Logger) *Client {
	return newClient(openMeteoDefaultURL, timeout, log)
}

// NewClientWithURL constructs a Client pointing at a custom base URL (for tests).
func NewClientWithURL(baseURL string) *Client {
	return newClient(baseURL, upstream.DefaultTimeout, nil)
}

func newClient(baseURL string, timeout time.Duration, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{baseURL: baseURL, client: upstream.New("openmeteo-forecast", timeout), log: log, now: time.Now}
}

// Forecast returns the daily forecast for the normalized range r together with
// current conditions. When the provider rejects the range it is clipped to the
// window the provider reports and retried once; failing that, only current
// conditions are returned.
func (c *Client) Forecast(ctx context.Context, at geo.Coordinates, r *DateRange) (*Forecast, error) {
	requested := NormalizeRange(r, c.now())

	fc, err := c.fetch(ctx, at, &requested)
	if err == nil {
		return fc, nil
	}

	var se *upstream.StatusError
	if !errors.As(err, &se) || !strings.Contains(se.Body, outOfRange) {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	c.log.Warn("forecast range rejected", "range", requested.String(), "reason", se.Body)

	if window, ok := parseWindow(se.Body); ok {
		if clipped, ok := requested.Intersect(window); ok {
			fc, err := c.fetch(ctx, at, &clipped)
			if err == nil {
				fc.Clipped = true
				return fc, nil
			}
			c.log.Warn("clipped forecast failed", "range", clipped.String(), "err", err)
		}
	}

	fc, err = c.fetch(ctx, at, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: current conditions: %w", ErrUnavailable, err)
	}
	fc.Clipped = true
	return fc, nil
}

// parseWindow extracts the "from YYYY-MM-DD to YYYY-MM-DD" window from an
// error body.
func parseWindow(body string) (DateRange, bool) {
	m := allowedWindow.FindStringSubmatch(body)
	if m == nil {
		return DateRange{}, false
	}
	r, err := ParseDateRange(m[1], m[2])
	if err != nil {
		return DateRange{}, false
	}
	return r, true
}

// fetch performs one provider request. A nil range asks for current
// conditions only.
func (c *Client) fetch(ctx context.Context, at geo.Coordinates, r *DateRange) (*Forecast, error) {
	params := url.Values{
		"latitude":         {formatCoord(at.Latitude)},
		"longitude":        {formatCoord(at.Longitude)},
		"current_weather":  {"true"},
		"hourly":           {"relativehumidity_2m"},
		"timezone":         {"auto"},
		"temperature_unit": {"celsius"},
	}
	if r != nil {
		params.Set("daily", dailyFields)
		params.Set("start_date", r.Start.Format(DateLayout))
		params.Set("end_date", r.End.Format(DateLayout))
	}

	var raw forecastResponse
	if err := c.client.GetJSON(ctx, c.baseURL+"?"+params.Encode(), &raw); err != nil {
		return nil, err
	}

	fc, err := raw.toForecast()
	if err != nil {
		return nil, err
	}
	if r != nil && len(fc.Daily) > 0 {
		served := *r
		fc.Range = &served
	}
	return fc, nil
}

func formatCoord(v float64) string {
	return fmt.Sprintf("%.5f", v)
}

type forecastResponse struct {
	UTCOffsetSeconds int `json:"utc_offset_seconds"`
	CurrentWeather   *struct {
		Time        string   `json:"time"`
		Temperature *float64 `json:"temperature"`
		WindSpeed   *float64 `json:"windspeed"`
		WeatherCode *int     `json:"weathercode"`
	} `json:"current_weather"`
	Hourly *struct {
		Time     []string   `json:"time"`
		Humidity []*float64 `json:"relativehumidity_2m"`
	} `json:"hourly"`
	Daily *struct {
		Time           []string   `json:"time"`
		TemperatureMax []*float64 `json:"temperature_2m_max"`
		TemperatureMin []*float64 `json:"temperature_2m_min"`
		Precipitation  []*float64 `json:"precipitation_sum"`
		WeatherCode    []*int     `json:"weathercode"`
		WindSpeedMax   []*float64 `json:"windspeed_10m_max"`
	} `json:"daily"`
}

func (raw *forecastResponse) toForecast() (*Forecast, error) {
	loc := time.FixedZone("local", raw.UTCOffsetSeconds)
	fc := &Forecast{Daily: []Day{}}

	if cw := raw.CurrentWeather; cw != nil && cw.Temperature != nil && cw.WeatherCode != nil {
		cur := &Current{
			Temperature: math.Round(*cw.Temperature),
			WeatherCode: *cw.WeatherCode,
			Condition:   Describe(*cw.WeatherCode),
			WindKPH:     round1(cw.WindSpeed),
		}
		if t, ok := parseTime(cw.Time, loc); ok {
			cur.Time = t
			if h := raw.Hourly; h != nil {
				times := make([]time.Time, len(h.Time))
				for i, s := range h.Time {
					times[i], _ = parseTime(s, loc)
				}
				if v, ok := NearestHumidity(t, times, h.Humidity); ok {
					rounded := math.Round(v)
					cur.Humidity = &rounded
				}
			}
		}
		fc.Current = cur
	}

	if d := raw.Daily; d != nil {
		var prev time.Time
		for i, s := range d.Time {
			date, err := time.Parse(DateLayout, s)
			if err != nil {
				return nil, fmt.Errorf("%w: daily date %q", ErrMalformed, s)
			}
			if i > 0 && !date.Equal(prev.AddDate(0, 0, 1)) {
				return nil, fmt.Errorf("%w: daily dates not contiguous at %s", ErrMalformed, s)
			}
			prev = date

			day := Day{
				Date:            s,
				TemperatureMax:  roundInt(index(d.TemperatureMax, i)),
				TemperatureMin:  roundInt(index(d.TemperatureMin, i)),
				PrecipitationMM: round1(index(d.Precipitation, i)),
				WindKPH:         round1(index(d.WindSpeedMax, i)),
			}
			if code := index(d.WeatherCode, i); code != nil {
				day.WeatherCode = code
				day.Condition = Describe(*code)
			} else if fc.Current != nil {
				day.Condition = fc.Current.Condition
			} else {
				day.Condition = Unknown
			}
			fc.Daily = append(fc.Daily, day)
		}
	}

	if fc.Current == nil && len(fc.Daily) == 0 {
		return nil, fmt.Errorf("%w: no current conditions and no daily data", ErrMalformed)
	}
	return fc, nil
}

// parseTime accepts Open-Meteo's local "2006-01-02T15:04" form as well as
// RFC 3339, returning UTC.
func parseTime(s string, loc *time.Location) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// NearestHumidity returns the value whose timestamp is closest to t. Zero
// timestamps and nil values are skipped; ties keep the earliest entry.
func NearestHumidity(t time.Time, times []time.Time, values []*float64) (float64, bool) {
	best := -1
	var bestDiff time.Duration
	for i, ts := range times {
		if ts.IsZero() || i >= len(values) || values[i] == nil {
			continue
		}
		diff := ts.Sub(t)
		if diff < 0 {
			diff = -diff
		}
		if best < 0 || diff < bestDiff {
			best, bestDiff = i, diff
		}
	}
	if best < 0 {
		return 0, false
	}
	return *values[best], true
}

func index[T any](s []*T, i int) *T {
	if i < len(s) {
		return s[i]
	}
	return nil
}

func roundInt(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := math.Round(*v)
	return &r
}

func round1(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := geo.Round(*v, 1)
	return &r
}
