package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/dvcrn/ledspeed/internal/logger"
	"github.com/dvcrn/ledspeed/internal/speed"
)

const maxRequestBody = 4 << 10

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Get().Error().Err(err).Msg("Failed to write response body")
	}
}

// decodeSettings reads exactly one settings object from body. Anything but
// whitespace after it is an error.
func decodeSettings(body io.Reader) (speed.Settings, error) {
	var s speed.Settings
	dec := json.NewDecoder(body)
	if err := dec.Decode(&s); err != nil {
		return speed.Settings{}, err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return speed.Settings{}, errors.New("unexpected data after settings object")
	}
	return s, nil
}

// getSpeedHandler handles GET /speed
func (s *Server) getSpeedHandler(w http.ResponseWriter, r *http.Request) {
	current, err := s.controller.Current(r.Context())
	if err != nil {
		logger.Get().Error().Err(err).Msg("Failed to load speed settings")
		http.Error(w, "Failed to load settings", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, current)
}

// setSpeedHandler handles POST /speed. The response carries the applied
// values, which may have been clamped.
func (s *Server) setSpeedHandler(w http.ResponseWriter, r *http.Request) {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || mediaType != "application/json" {
			http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
			return
		}
	}

	requested, err := decodeSettings(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		logger.Get().Warn().Err(err).Msg("Rejected speed settings")
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	applied, err := s.controller.Apply(r.Context(), requested)
	if err != nil {
		logger.Get().Error().Err(err).Msg("Failed to apply speed settings")
		http.Error(w, "Failed to apply settings", http.StatusInternalServerError)
		return
	}
	s.metrics.recordApply(requested, applied)

	writeJSON(w, http.StatusOK, applied)
}

// ledsHandler handles GET /leds
func (s *Server) ledsHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := s.controller.Current(r.Context()); err != nil {
		logger.Get().Error().Err(err).Msg("Failed to load speed settings")
		http.Error(w, "Failed to load settings", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, s.controller.LEDs())
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
