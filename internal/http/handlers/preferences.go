package handlers

import (
	"net/http"

	"homedesign/internal/kv"
)

type themeBody struct {
	Theme string `json:"theme"`
}

func (a *App) GetTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := kv.Theme(r.Context(), a.Store)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, themeBody{Theme: theme})
}

func (a *App) PutTheme(w http.ResponseWriter, r *http.Request) {
	var body themeBody
	if err := a.decode(w, r, &body); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	theme, err := kv.SetTheme(r.Context(), a.Store, body.Theme)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, themeBody{Theme: theme})
}
