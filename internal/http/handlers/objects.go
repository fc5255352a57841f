package handlers

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"

	"homedesign/internal/domain"
)

// GetObject serves a downloaded video. Range requests are honoured so
// browsers can seek.
func (a *App) GetObject(w http.ResponseWriter, r *http.Request) {
	obj, ok := a.Objects.Get(chi.URLParam(r, "id"))
	if !ok {
		a.fail(w, r, domain.ErrNotFound)
		return
	}
	w.Header().Set("Content-Type", obj.MIMEType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	http.ServeContent(w, r, "", obj.CreatedAt, bytes.NewReader(obj.Data))
}
