package upstream

import (
	"encoding/json"

	"github.com/nmorell/weatherfacade/internal/apierr"
)

// Endpoint names on the provider, appended to the configured base URL.
const (
	EndpointCurrent  = "current.json"
	EndpointHistory  = "history.json"
	EndpointForecast = "forecast.json"
)

// The payload structs below use pointer fields so translators can tell a
// missing upstream field from a zero value. They live only for the duration
// of a single call: decoded, translated, dropped.

// Condition is the provider's weather condition block.
type Condition struct {
	Text *string `json:"text"`
	Icon string  `json:"icon"`
	Code int     `json:"code"`
}

// Location is the provider's location block.
type Location struct {
	Name      *string `json:"name"`
	Region    string  `json:"region"`
	Country   *string `json:"country"`
	Localtime *string `json:"localtime"`
}

// CurrentConditions is the provider's current-weather block.
type CurrentConditions struct {
	TempC     *float64   `json:"temp_c"`
	Condition *Condition `json:"condition"`
	WindKph   *float64   `json:"wind_kph"`
	Humidity  *int       `json:"humidity"`
}

// DayAggregate is the provider's per-day aggregate block used by both the
// history and forecast endpoints.
type DayAggregate struct {
	MaxTempC          *float64   `json:"maxtemp_c"`
	MinTempC          *float64   `json:"mintemp_c"`
	AvgTempC          *float64   `json:"avgtemp_c"`
	MaxWindKph        *float64   `json:"maxwind_kph"`
	TotalPrecipMm     *float64   `json:"totalprecip_mm"`
	AvgHumidity       *float64   `json:"avghumidity"`
	DailyChanceOfRain *int       `json:"daily_chance_of_rain"`
	Condition         *Condition `json:"condition"`
	UV                *float64   `json:"uv"`
}

// HourSample is the provider's per-hour forecast block.
type HourSample struct {
	Time         *string    `json:"time"`
	TempC        *float64   `json:"temp_c"`
	Condition    *Condition `json:"condition"`
	WindKph      *float64   `json:"wind_kph"`
	Humidity     *int       `json:"humidity"`
	PrecipMm     *float64   `json:"precip_mm"`
	ChanceOfRain *int       `json:"chance_of_rain"`
}

// Astro is the provider's astronomical block. Optional on forecast days.
type Astro struct {
	Sunrise *string `json:"sunrise"`
	Sunset  *string `json:"sunset"`
}

// ForecastDayEntry is one entry of the provider's forecastday list.
type ForecastDayEntry struct {
	Date  *string       `json:"date"`
	Day   *DayAggregate `json:"day"`
	Astro *Astro        `json:"astro"`
	Hour  []HourSample  `json:"hour"`
}

// ForecastBlock wraps the provider's forecastday list.
type ForecastBlock struct {
	ForecastDay []ForecastDayEntry `json:"forecastday"`
}

// CurrentPayload is the current.json response envelope.
type CurrentPayload struct {
	Location *Location          `json:"location"`
	Current  *CurrentConditions `json:"current"`
}

// HistoryPayload is the history.json response envelope.
type HistoryPayload struct {
	Location *Location      `json:"location"`
	Forecast *ForecastBlock `json:"forecast"`
}

// ForecastPayload is the forecast.json response envelope.
type ForecastPayload struct {
	Location *Location          `json:"location"`
	Current  *CurrentConditions `json:"current"`
	Forecast *ForecastBlock     `json:"forecast"`
}

// ParseCurrent decodes a current.json payload.
func ParseCurrent(raw json.RawMessage) (*CurrentPayload, error) {
	var p CurrentPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, decodeError(EndpointCurrent, err)
	}
	return &p, nil
}

// ParseHistory decodes a history.json payload.
func ParseHistory(raw json.RawMessage) (*HistoryPayload, error) {
	var p HistoryPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, decodeError(EndpointHistory, err)
	}
	return &p, nil
}

// ParseForecast decodes a forecast.json payload.
func ParseForecast(raw json.RawMessage) (*ForecastPayload, error) {
	var p ForecastPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, decodeError(EndpointForecast, err)
	}
	return &p, nil
}

// decodeError classifies a payload that does not match the provider contract.
// Not a retry candidate, so it maps to the invalid-parameter kind.
func decodeError(endpoint string, err error) error {
	return apierr.InvalidParameter("response", endpoint, map[string]any{
		"reason": "malformed upstream payload",
		"decode": err.Error(),
	})
}
