package models

// CurrentWeather is the outward shape for GET /current_weather.
type CurrentWeather struct {
	LocationName string  `json:"location_name"`
	Country      string  `json:"country"`
	LocalTime    string  `json:"local_time"`
	CurrentTempC float64 `json:"current_temp_c"`
	Condition    string  `json:"condition"`
	WindSpeedKph float64 `json:"wind_speed_kph"`
	Humidity     int     `json:"humidity"`
}

// HistoricalDay is one day's entry in a HistoryWeather response.
type HistoricalDay struct {
	Date          string  `json:"date"`
	AvgTempC      float64 `json:"avg_temp_c"`
	Condition     string  `json:"condition"`
	TotalPrecipMm float64 `json:"total_precip_mm"`
}

// HistoryWeather is the outward shape for GET /history_weather.
// Days is ordered most-recent-first.
type HistoryWeather struct {
	LocationName string          `json:"location_name"`
	Country      string          `json:"country"`
	Days         []HistoricalDay `json:"days"`
}

// ForecastHour is one hour's entry inside a ForecastDay.
type ForecastHour struct {
	Time         string  `json:"time"`
	TempC        float64 `json:"temp_c"`
	Condition    string  `json:"condition"`
	Humidity     int     `json:"humidity"`
	WindKph      float64 `json:"wind_kph"`
	PrecipMm     float64 `json:"precip_mm"`
	ChanceOfRain int     `json:"chance_of_rain"`
}

// ForecastDay is one day's entry in a ForecastWeather response. HourlyData is
// always present: empty unless hourly data was requested. Sunrise and Sunset
// are null when the upstream payload has no astronomical block.
type ForecastDay struct {
	Date              string         `json:"date"`
	MaxTempC          float64        `json:"max_temp_c"`
	MinTempC          float64        `json:"min_temp_c"`
	AvgTempC          float64        `json:"avg_temp_c"`
	Condition         string         `json:"condition"`
	TotalPrecipMm     float64        `json:"total_precip_mm"`
	MaxWindKph        float64        `json:"max_wind_kph"`
	AvgHumidity       float64        `json:"avg_humidity"`
	DailyChanceOfRain int            `json:"daily_chance_of_rain"`
	UVIndex           float64        `json:"uv_index"`
	Sunrise           *string        `json:"sunrise"`
	Sunset            *string        `json:"sunset"`
	HourlyData        []ForecastHour `json:"hourly_data"`
}

// ForecastWeather is the outward shape for GET /forecast. ForecastDays is in
// upstream order (ascending date).
type ForecastWeather struct {
	LocationName     string        `json:"location_name"`
	Country          string        `json:"country"`
	CurrentTempC     float64       `json:"current_temp_c"`
	CurrentCondition string        `json:"current_condition"`
	ForecastDays     []ForecastDay `json:"forecast_days"`
}

// ErrorEnvelope is the outward shape of every non-2xx response.
type ErrorEnvelope struct {
	Error   string         `json:"error"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}
