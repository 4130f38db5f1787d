// Package translate holds the pure mappings from validated provider payloads
// to the outward response shapes. Translators never substitute defaults: a
// required provider field that is absent fails the translation, naming the
// field.
package translate

import (
	"github.com/nmorell/weatherfacade/internal/apierr"
	"github.com/nmorell/weatherfacade/internal/models"
	"github.com/nmorell/weatherfacade/internal/upstream"
)

// missingField reports a provider payload that lacks a required field.
func missingField(path string) error {
	return apierr.InvalidParameter("response", path, map[string]any{
		"missing_field": path,
	})
}

// Current maps a current.json payload to the outward CurrentWeather shape.
func Current(p *upstream.CurrentPayload) (models.CurrentWeather, error) {
	var out models.CurrentWeather

	switch {
	case p.Location == nil:
		return out, missingField("location")
	case p.Location.Name == nil:
		return out, missingField("location.name")
	case p.Location.Country == nil:
		return out, missingField("location.country")
	case p.Location.Localtime == nil:
		return out, missingField("location.localtime")
	case p.Current == nil:
		return out, missingField("current")
	case p.Current.TempC == nil:
		return out, missingField("current.temp_c")
	case p.Current.Condition == nil || p.Current.Condition.Text == nil:
		return out, missingField("current.condition.text")
	case p.Current.WindKph == nil:
		return out, missingField("current.wind_kph")
	case p.Current.Humidity == nil:
		return out, missingField("current.humidity")
	}

	out = models.CurrentWeather{
		LocationName: *p.Location.Name,
		Country:      *p.Location.Country,
		LocalTime:    *p.Location.Localtime,
		CurrentTempC: *p.Current.TempC,
		Condition:    *p.Current.Condition.Text,
		WindSpeedKph: *p.Current.WindKph,
		Humidity:     *p.Current.Humidity,
	}
	return out, nil
}

// HistoricalDay maps a history.json payload to one outward HistoricalDay.
// The provider returns a single forecastday entry for a dt query.
func HistoricalDay(p *upstream.HistoryPayload) (models.HistoricalDay, error) {
	var out models.HistoricalDay

	if p.Forecast == nil || len(p.Forecast.ForecastDay) == 0 {
		return out, missingField("forecast.forecastday")
	}
	entry := p.Forecast.ForecastDay[0]

	switch {
	case entry.Date == nil:
		return out, missingField("forecast.forecastday[0].date")
	case entry.Day == nil:
		return out, missingField("forecast.forecastday[0].day")
	case entry.Day.AvgTempC == nil:
		return out, missingField("forecast.forecastday[0].day.avgtemp_c")
	case entry.Day.Condition == nil || entry.Day.Condition.Text == nil:
		return out, missingField("forecast.forecastday[0].day.condition.text")
	case entry.Day.TotalPrecipMm == nil:
		return out, missingField("forecast.forecastday[0].day.totalprecip_mm")
	}

	out = models.HistoricalDay{
		Date:          *entry.Date,
		AvgTempC:      *entry.Day.AvgTempC,
		Condition:     *entry.Day.Condition.Text,
		TotalPrecipMm: *entry.Day.TotalPrecipMm,
	}
	return out, nil
}

// HistoryLocation extracts the outward location header fields from a
// history.json payload.
func HistoryLocation(p *upstream.HistoryPayload) (name, country string, err error) {
	switch {
	case p.Location == nil:
		return "", "", missingField("location")
	case p.Location.Name == nil:
		return "", "", missingField("location.name")
	case p.Location.Country == nil:
		return "", "", missingField("location.country")
	}
	return *p.Location.Name, *p.Location.Country, nil
}

// Forecast maps a forecast.json payload to the outward ForecastWeather shape.
// Hourly entries are translated only when includeHourly is set; the outward
// hourly_data list is always present, empty otherwise.
func Forecast(p *upstream.ForecastPayload, includeHourly bool) (models.ForecastWeather, error) {
	var out models.ForecastWeather

	switch {
	case p.Location == nil:
		return out, missingField("location")
	case p.Location.Name == nil:
		return out, missingField("location.name")
	case p.Location.Country == nil:
		return out, missingField("location.country")
	case p.Current == nil:
		return out, missingField("current")
	case p.Current.TempC == nil:
		return out, missingField("current.temp_c")
	case p.Current.Condition == nil || p.Current.Condition.Text == nil:
		return out, missingField("current.condition.text")
	case p.Forecast == nil:
		return out, missingField("forecast.forecastday")
	}

	days := make([]models.ForecastDay, 0, len(p.Forecast.ForecastDay))
	for _, entry := range p.Forecast.ForecastDay {
		day, err := forecastDay(entry, includeHourly)
		if err != nil {
			return out, err
		}
		days = append(days, day)
	}

	out = models.ForecastWeather{
		LocationName:     *p.Location.Name,
		Country:          *p.Location.Country,
		CurrentTempC:     *p.Current.TempC,
		CurrentCondition: *p.Current.Condition.Text,
		ForecastDays:     days,
	}
	return out, nil
}

func forecastDay(entry upstream.ForecastDayEntry, includeHourly bool) (models.ForecastDay, error) {
	var out models.ForecastDay

	switch {
	case entry.Date == nil:
		return out, missingField("forecast.forecastday.date")
	case entry.Day == nil:
		return out, missingField("forecast.forecastday.day")
	case entry.Day.MaxTempC == nil:
		return out, missingField("forecast.forecastday.day.maxtemp_c")
	case entry.Day.MinTempC == nil:
		return out, missingField("forecast.forecastday.day.mintemp_c")
	case entry.Day.AvgTempC == nil:
		return out, missingField("forecast.forecastday.day.avgtemp_c")
	case entry.Day.Condition == nil || entry.Day.Condition.Text == nil:
		return out, missingField("forecast.forecastday.day.condition.text")
	case entry.Day.TotalPrecipMm == nil:
		return out, missingField("forecast.forecastday.day.totalprecip_mm")
	case entry.Day.MaxWindKph == nil:
		return out, missingField("forecast.forecastday.day.maxwind_kph")
	case entry.Day.AvgHumidity == nil:
		return out, missingField("forecast.forecastday.day.avghumidity")
	case entry.Day.DailyChanceOfRain == nil:
		return out, missingField("forecast.forecastday.day.daily_chance_of_rain")
	case entry.Day.UV == nil:
		return out, missingField("forecast.forecastday.day.uv")
	}

	// Astronomical data is optional; absence yields null, not a failure.
	var sunrise, sunset *string
	if entry.Astro != nil {
		sunrise = entry.Astro.Sunrise
		sunset = entry.Astro.Sunset
	}

	hourly := make([]models.ForecastHour, 0)
	if includeHourly {
		for _, sample := range entry.Hour {
			hour, err := forecastHour(sample)
			if err != nil {
				return out, err
			}
			hourly = append(hourly, hour)
		}
	}

	out = models.ForecastDay{
		Date:              *entry.Date,
		MaxTempC:          *entry.Day.MaxTempC,
		MinTempC:          *entry.Day.MinTempC,
		AvgTempC:          *entry.Day.AvgTempC,
		Condition:         *entry.Day.Condition.Text,
		TotalPrecipMm:     *entry.Day.TotalPrecipMm,
		MaxWindKph:        *entry.Day.MaxWindKph,
		AvgHumidity:       *entry.Day.AvgHumidity,
		DailyChanceOfRain: *entry.Day.DailyChanceOfRain,
		UVIndex:           *entry.Day.UV,
		Sunrise:           sunrise,
		Sunset:            sunset,
		HourlyData:        hourly,
	}
	return out, nil
}

func forecastHour(sample upstream.HourSample) (models.ForecastHour, error) {
	var out models.ForecastHour

	switch {
	case sample.Time == nil:
		return out, missingField("forecast.forecastday.hour.time")
	case sample.TempC == nil:
		return out, missingField("forecast.forecastday.hour.temp_c")
	case sample.Condition == nil || sample.Condition.Text == nil:
		return out, missingField("forecast.forecastday.hour.condition.text")
	case sample.Humidity == nil:
		return out, missingField("forecast.forecastday.hour.humidity")
	case sample.WindKph == nil:
		return out, missingField("forecast.forecastday.hour.wind_kph")
	case sample.PrecipMm == nil:
		return out, missingField("forecast.forecastday.hour.precip_mm")
	case sample.ChanceOfRain == nil:
		return out, missingField("forecast.forecastday.hour.chance_of_rain")
	}

	out = models.ForecastHour{
		Time:         *sample.Time,
		TempC:        *sample.TempC,
		Condition:    *sample.Condition.Text,
		Humidity:     *sample.Humidity,
		WindKph:      *sample.WindKph,
		PrecipMm:     *sample.PrecipMm,
		ChanceOfRain: *sample.ChanceOfRain,
	}
	return out, nil
}
