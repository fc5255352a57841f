package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"homedesign/internal/domain"
	"homedesign/internal/kv"
	"homedesign/internal/middleware"
	"homedesign/internal/render"
	"homedesign/internal/runs"
	"homedesign/internal/video"
)

type createDesignResponse struct {
	RunID string     `json:"run_id"`
	State runs.State `json:"state"`
}

func (a *App) CreateDesign(w http.ResponseWriter, r *http.Request) {
	var spec domain.HouseSpec
	if err := a.decode(w, r, &spec); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	run, err := a.Runs.Start(middleware.SessionFromContext(r.Context()), spec)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/designs/"+run.ID)
	a.json(w, http.StatusAccepted, createDesignResponse{RunID: run.ID, State: run.State})
}

// GetDesign reports progress, and the package once the run has finished.
func (a *App) GetDesign(w http.ResponseWriter, r *http.Request) {
	run, err := a.sessionRun(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, run)
}

// ResetDesign discards a finished run and its video object.
func (a *App) ResetDesign(w http.ResponseWriter, r *http.Request) {
	run, err := a.sessionRun(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.Runs.Reset(run.ID); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) DesignReport(w http.ResponseWriter, r *http.Request) {
	run, err := a.sessionRun(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if run.Package == nil {
		a.error(w, http.StatusConflict, "not_ready", "the design has no package yet")
		return
	}
	theme := kv.ThemeLight
	if a.Store != nil {
		if t, err := kv.Theme(r.Context(), a.Store); err == nil {
			theme = t
		}
	}
	videoSrc := ""
	if run.Package.HasVideo() {
		videoSrc = "/v1/objects/" + video.ObjectID(run.Package.VideoURL)
	}
	var buf bytes.Buffer
	err = render.Report(&buf, render.ReportData{
		Spec:        run.Spec,
		Package:     run.Package,
		Theme:       theme,
		VideoSrc:    videoSrc,
		GeneratedAt: finishedAt(run),
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// sessionRun hides runs that belong to another session.
func (a *App) sessionRun(r *http.Request) (runs.Run, error) {
	id := chi.URLParam(r, "id")
	if id == "" {
		return runs.Run{}, domain.ErrNotFound
	}
	run, err := a.Runs.Get(id)
	if err != nil {
		return runs.Run{}, err
	}
	if run.SessionID != middleware.SessionFromContext(r.Context()) {
		return runs.Run{}, domain.ErrNotFound
	}
	return run, nil
}

func finishedAt(run runs.Run) time.Time {
	if run.FinishedAt != nil {
		return *run.FinishedAt
	}
	return run.StartedAt
}
