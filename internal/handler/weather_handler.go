package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"weather-dashboard/internal/observability"
	"weather-dashboard/internal/weather"
)

// WeatherService fetches current conditions for a city
type WeatherService interface {
	Current(ctx context.Context, city string) (*weather.Report, error)
}

// WeatherHandler handles weather lookup endpoints
type WeatherHandler struct {
	weather WeatherService
}

// NewWeatherHandler creates a new weather handler
func NewWeatherHandler(service WeatherService) *WeatherHandler {
	return &WeatherHandler{
		weather: service,
	}
}

// Current looks up current conditions for the requested city
func (h *WeatherHandler) Current(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	if city == "" {
		http.Error(w, `{"error":"City is required"}`, http.StatusBadRequest)
		return
	}

	report, err := h.weather.Current(r.Context(), city)
	if err != nil {
		// Non-200 upstream answers keep their status code on the way out.
		var statusErr *weather.StatusError
		if errors.As(err, &statusErr) {
			outcome := "upstream_error"
			if statusErr.Code == http.StatusNotFound {
				outcome = "not_found"
			}
			observability.WeatherLookupsTotal.WithLabelValues(outcome).Inc()
			http.Error(w, `{"error":"`+err.Error()+`"}`, statusErr.Code)
			return
		}

		observability.WeatherLookupsTotal.WithLabelValues("error").Inc()
		http.Error(w, `{"error":"Weather service unavailable"}`, http.StatusBadGateway)
		return
	}

	observability.WeatherLookupsTotal.WithLabelValues("ok").Inc()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}
