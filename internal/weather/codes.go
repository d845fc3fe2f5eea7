package weather

// Condition is the display form of an Open-Meteo weather code.
type Condition struct {
	Description string `json:"description"`
	Key         string `json:"icon_key"`
	Icon        string `json:"icon"`
}

// Unknown is returned for codes missing from the table.
var Unknown = Condition{Description: "Unknown conditions", Key: "unknown", Icon: "❓"}

// WMO weather interpretation codes as used by Open-Meteo.
var conditions = map[int]Condition{
	0:  {"Clear sky", "clear", "☀️"},
	1:  {"Mainly clear", "mostly-clear", "🌤️"},
	2:  {"Partly cloudy", "partly-cloudy", "⛅"},
	3:  {"Overcast", "overcast", "☁️"},
	45: {"Fog", "fog", "🌫️"},
	48: {"Depositing rime fog", "fog", "🌫️"},
	51: {"Light drizzle", "drizzle", "🌦️"},
	53: {"Moderate drizzle", "drizzle", "🌦️"},
	55: {"Dense drizzle", "drizzle", "🌧️"},
	56: {"Light freezing drizzle", "freezing-drizzle", "🌨️"},
	57: {"Dense freezing drizzle", "freezing-drizzle", "🌨️"},
	61: {"Slight rain", "rain", "🌧️"},
	63: {"Moderate rain", "rain", "🌧️"},
	65: {"Heavy rain", "heavy-rain", "⛈️"},
	66: {"Light freezing rain", "freezing-rain", "🌨️"},
	67: {"Heavy freezing rain", "freezing-rain", "🌨️"},
	71: {"Slight snow", "snow", "🌨️"},
	73: {"Moderate snow", "snow", "❄️"},
	75: {"Heavy snow", "snow", "❄️"},
	77: {"Snow grains", "snow-grains", "🌨️"},
	80: {"Slight rain showers", "showers", "🌦️"},
	81: {"Moderate rain showers", "showers", "🌧️"},
	82: {"Violent rain showers", "showers", "⛈️"},
	85: {"Slight snow showers", "snow-showers", "🌨️"},
	86: {"Heavy snow showers", "snow-showers", "❄️"},
	95: {"Thunderstorm", "thunderstorm", "⛈️"},
	96: {"Thunderstorm with slight hail", "thunderstorm-hail", "⛈️"},
	99: {"Thunderstorm with heavy hail", "thunderstorm-hail", "⛈️"},
}

// Describe maps a weather code to its Condition.
func Describe(code int) Condition {
	if c, ok := conditions[code]; ok {
		return c
	}
	return Unknown
}
