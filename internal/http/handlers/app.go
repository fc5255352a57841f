package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"homedesign/internal/domain"
	"homedesign/internal/infra"
	"homedesign/internal/kv"
	"homedesign/internal/runs"
	"homedesign/internal/video"
)

const maxBodyBytes = 64 << 10

// Runs is the run registry the design endpoints drive.
type Runs interface {
	Start(sessionID string, spec domain.HouseSpec) (runs.Run, error)
	Get(id string) (runs.Run, error)
	Reset(id string) error
}

// Objects resolves object references to bytes.
type Objects interface {
	Get(ref string) (video.Object, bool)
}

type App struct {
	Runs    Runs
	Objects Objects
	Store   kv.Store
	Logger  *infra.Logger
	Version string
}

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]errorBody{"error": {Code: code, Message: message}})
}

// fail maps domain errors onto HTTP responses.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		a.json(w, http.StatusBadRequest, map[string]errorBody{"error": {
			Code: "invalid_house_spec", Message: "house spec is invalid", Fields: verr.Fields,
		}})
	case errors.Is(err, domain.ErrInvalidHouseSpec):
		a.error(w, http.StatusBadRequest, "invalid_house_spec", err.Error())
	case errors.Is(err, domain.ErrInvalidTheme):
		a.error(w, http.StatusBadRequest, "invalid_theme", "theme must be light or dark")
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, domain.ErrRunInProgress):
		a.error(w, http.StatusConflict, "run_in_progress", "a design is already being generated for this session")
	default:
		infra.OrNop(a.Logger).Error().Err(err).Str("path", r.URL.Path).Msg("handler failed")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func (a *App) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("decode body: trailing data after JSON value")
	}
	return nil
}
