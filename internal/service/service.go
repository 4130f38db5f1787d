package service

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nmorell/weatherfacade/internal/apierr"
	"github.com/nmorell/weatherfacade/internal/models"
	"github.com/nmorell/weatherfacade/internal/observability"
	"github.com/nmorell/weatherfacade/internal/translate"
	"github.com/nmorell/weatherfacade/internal/upstream"
)

// WeatherService orchestrates the three query operations: it builds provider
// parameters, invokes the upstream caller, and hands validated payloads to
// the translators. The first failure propagates; nothing is caught and
// suppressed here.
type WeatherService struct {
	upstream upstream.Caller
	now      func() time.Time
}

// NewWeatherService creates a WeatherService backed by the given caller.
func NewWeatherService(caller upstream.Caller) *WeatherService {
	return &WeatherService{
		upstream: caller,
		now:      time.Now,
	}
}

// loggerFromContext extracts a zap.Logger from request context if present.
// Returns nil if logger is not found or context is invalid.
func loggerFromContext(ctx context.Context) *zap.Logger {
	if v := ctx.Value("logger"); v != nil {
		if l, ok := v.(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return nil
}

// GetCurrent retrieves current weather for a location. One upstream round trip.
func (s *WeatherService) GetCurrent(ctx context.Context, location string) (models.CurrentWeather, error) {
	logger := loggerFromContext(ctx)
	if logger != nil {
		logger.Info("getting current weather", zap.String("location", location))
	}

	if strings.TrimSpace(location) == "" {
		return models.CurrentWeather{}, apierr.InvalidParameter("location", location, nil)
	}
	observability.RecordWeatherQuery(location)

	params := url.Values{}
	params.Set("q", location)
	params.Set("aqi", "no")

	raw, err := s.upstream.Get(ctx, upstream.EndpointCurrent, params)
	if err != nil {
		logFailure(logger, "current weather lookup failed", location, err)
		return models.CurrentWeather{}, err
	}

	payload, err := upstream.ParseCurrent(raw)
	if err != nil {
		logFailure(logger, "current weather lookup failed", location, err)
		return models.CurrentWeather{}, err
	}

	result, err := translate.Current(payload)
	if err != nil {
		logFailure(logger, "current weather lookup failed", location, err)
		return models.CurrentWeather{}, err
	}

	if logger != nil {
		logger.Info("current weather retrieved", zap.String("location", location))
	}
	return result, nil
}

// GetHistory retrieves historical weather for the past days (1-7), one
// sequential upstream round trip per day. Entries are appended most recent
// first. Fail-fast: any day's failure fails the whole operation with no
// partial result. The response header location comes from the last fetched
// day's payload.
func (s *WeatherService) GetHistory(ctx context.Context, location string, days int) (models.HistoryWeather, error) {
	logger := loggerFromContext(ctx)
	if logger != nil {
		logger.Info("getting historical weather", zap.String("location", location), zap.Int("days", days))
	}

	if days < 1 || days > 7 {
		return models.HistoryWeather{}, apierr.InvalidParameter("days", days, map[string]any{
			"allowed_range": "1-7",
		})
	}
	if strings.TrimSpace(location) == "" {
		return models.HistoryWeather{}, apierr.InvalidParameter("location", location, nil)
	}
	observability.RecordWeatherQuery(location)

	historicalDays := make([]models.HistoricalDay, 0, days)
	var lastPayload *upstream.HistoryPayload

	for i := 1; i <= days; i++ {
		// Calendar subtraction, not 24h multiples, so DST shifts do not
		// skip or repeat a date.
		targetDate := s.now().AddDate(0, 0, -i).Format("2006-01-02")

		params := url.Values{}
		params.Set("q", location)
		params.Set("dt", targetDate)

		raw, err := s.upstream.Get(ctx, upstream.EndpointHistory, params)
		if err != nil {
			logFailure(logger, "historical weather lookup failed", location, err, zap.String("date", targetDate))
			return models.HistoryWeather{}, err
		}

		payload, err := upstream.ParseHistory(raw)
		if err != nil {
			logFailure(logger, "historical weather lookup failed", location, err, zap.String("date", targetDate))
			return models.HistoryWeather{}, err
		}

		day, err := translate.HistoricalDay(payload)
		if err != nil {
			logFailure(logger, "historical weather lookup failed", location, err, zap.String("date", targetDate))
			return models.HistoryWeather{}, err
		}

		historicalDays = append(historicalDays, day)
		lastPayload = payload
	}

	name, country, err := translate.HistoryLocation(lastPayload)
	if err != nil {
		logFailure(logger, "historical weather lookup failed", location, err)
		return models.HistoryWeather{}, err
	}

	if logger != nil {
		logger.Info("historical weather retrieved", zap.String("location", location), zap.Int("days", days))
	}
	return models.HistoryWeather{
		LocationName: name,
		Country:      country,
		Days:         historicalDays,
	}, nil
}

// GetForecast retrieves the forecast for a location (1-14 days). One upstream
// round trip. Hourly entries are included only when includeHourly is set.
func (s *WeatherService) GetForecast(ctx context.Context, location string, days int, includeHourly bool) (models.ForecastWeather, error) {
	logger := loggerFromContext(ctx)
	if logger != nil {
		logger.Info("getting forecast", zap.String("location", location), zap.Int("days", days), zap.Bool("hourly", includeHourly))
	}

	if days < 1 || days > 14 {
		return models.ForecastWeather{}, apierr.InvalidParameter("days", days, map[string]any{
			"allowed_range": "1-14",
		})
	}
	if strings.TrimSpace(location) == "" {
		return models.ForecastWeather{}, apierr.InvalidParameter("location", location, nil)
	}
	observability.RecordWeatherQuery(location)

	params := url.Values{}
	params.Set("q", location)
	params.Set("days", strconv.Itoa(days))
	params.Set("aqi", "no")
	params.Set("alerts", "no")

	raw, err := s.upstream.Get(ctx, upstream.EndpointForecast, params)
	if err != nil {
		logFailure(logger, "forecast lookup failed", location, err)
		return models.ForecastWeather{}, err
	}

	payload, err := upstream.ParseForecast(raw)
	if err != nil {
		logFailure(logger, "forecast lookup failed", location, err)
		return models.ForecastWeather{}, err
	}

	result, err := translate.Forecast(payload, includeHourly)
	if err != nil {
		logFailure(logger, "forecast lookup failed", location, err)
		return models.ForecastWeather{}, err
	}

	if logger != nil {
		logger.Info("forecast retrieved", zap.String("location", location), zap.Int("days", len(result.ForecastDays)))
	}
	return result, nil
}

func logFailure(logger *zap.Logger, msg, location string, err error, fields ...zap.Field) {
	if logger == nil {
		return
	}
	fields = append(fields, zap.String("location", location), zap.Error(err))
	logger.Error(msg, fields...)
}
