package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/nmorell/weatherfacade/internal/apierr"
	"github.com/nmorell/weatherfacade/internal/lifecycle"
	"github.com/nmorell/weatherfacade/internal/models"
	"github.com/nmorell/weatherfacade/internal/service"
	"github.com/nmorell/weatherfacade/internal/validation"
)

const (
	serviceName    = "weather-facade"
	serviceVersion = "1.0.0"
)

var validate = validator.New()

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	weatherService *service.WeatherService
	logger         *zap.Logger
}

// NewHandler returns a new Handler.
func NewHandler(weatherService *service.WeatherService, logger *zap.Logger) *Handler {
	return &Handler{
		weatherService: weatherService,
		logger:         logger,
	}
}

// locationQuery binds the location query parameter shared by all three
// endpoints.
type locationQuery struct {
	Location string `validate:"required,max=120"`
}

// bindLocation extracts and validates the location query parameter.
func bindLocation(r *http.Request) (string, error) {
	q := locationQuery{Location: strings.TrimSpace(r.URL.Query().Get("location"))}
	if err := validate.Struct(q); err != nil {
		return "", apierr.InvalidParameter("location", q.Location, nil)
	}
	loc, err := validation.ValidateLocation(q.Location, 1, 120)
	if err != nil {
		return "", apierr.InvalidParameter("location", q.Location, map[string]any{
			"reason": err.Error(),
		})
	}
	return loc, nil
}

// GetCurrentWeather handles GET /current_weather?location=.
func (h *Handler) GetCurrentWeather(w http.ResponseWriter, r *http.Request) {
	location, err := bindLocation(r)
	if err != nil {
		writeAPIError(w, r, err)
		return
	}

	result, err := h.weatherService.GetCurrent(r.Context(), location)
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetHistoryWeather handles GET /history_weather?location=&days=.
func (h *Handler) GetHistoryWeather(w http.ResponseWriter, r *http.Request) {
	location, err := bindLocation(r)
	if err != nil {
		writeAPIError(w, r, err)
		return
	}

	daysRaw := r.URL.Query().Get("days")
	days, err := strconv.Atoi(daysRaw)
	if err != nil {
		writeAPIError(w, r, apierr.InvalidParameter("days", daysRaw, map[string]any{
			"allowed_range": "1-7",
		}))
		return
	}

	result, err := h.weatherService.GetHistory(r.Context(), location, days)
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetForecast handles GET /forecast?location=&days=&hourly=.
// days defaults to 3, hourly to false.
func (h *Handler) GetForecast(w http.ResponseWriter, r *http.Request) {
	location, err := bindLocation(r)
	if err != nil {
		writeAPIError(w, r, err)
		return
	}

	days := 3
	if daysRaw := r.URL.Query().Get("days"); daysRaw != "" {
		parsed, err := strconv.Atoi(daysRaw)
		if err != nil {
			writeAPIError(w, r, apierr.InvalidParameter("days", daysRaw, map[string]any{
				"allowed_range": "1-14",
			}))
			return
		}
		days = parsed
	}

	hourly := false
	if hourlyRaw := r.URL.Query().Get("hourly"); hourlyRaw != "" {
		parsed, err := strconv.ParseBool(hourlyRaw)
		if err != nil {
			writeAPIError(w, r, apierr.InvalidParameter("hourly", hourlyRaw, nil))
			return
		}
		hourly = parsed
	}

	result, err := h.weatherService.GetForecast(r.Context(), location, days, hourly)
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetHealth handles GET /health. Returns 503 while the process is draining.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	if lifecycle.IsShuttingDown() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":    "shutting-down",
			"service":   serviceName,
			"version":   serviceVersion,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"service":   serviceName,
		"version":   serviceVersion,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// writeJSON writes a JSON response with the specified HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeAPIError maps err to its taxonomy kind and writes the error envelope.
// Anything unclassified becomes a generic 500 envelope; raw internals are
// logged server-side only.
func writeAPIError(w http.ResponseWriter, r *http.Request, err error) {
	e := apierr.From(err)
	if e.Kind == apierr.KindInternal {
		if logger, ok := r.Context().Value("logger").(*zap.Logger); ok && logger != nil {
			logger.Error("unclassified error", zap.Error(err))
		}
	}
	writeJSON(w, e.Status, models.ErrorEnvelope{
		Error:   string(e.Kind),
		Message: e.Message,
		Details: e.Details,
	})
}
