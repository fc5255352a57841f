package handlers

import (
	"net/http"

	"homedesign/internal/domain"
)

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok", "version": a.Version})
}

type catalogResponse struct {
	Orientations    []string         `json:"orientations"`
	Styles          []string         `json:"styles"`
	OutdoorFeatures []string         `json:"outdoorFeatures"`
	SpecialRooms    []string         `json:"specialRooms"`
	Defaults        domain.HouseSpec `json:"defaults"`
}

// Catalog returns the choices and defaults of the design form.
func (a *App) Catalog(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, catalogResponse{
		Orientations:    domain.Orientations,
		Styles:          domain.Styles,
		OutdoorFeatures: domain.OutdoorFeatures,
		SpecialRooms:    domain.SpecialRooms,
		Defaults:        domain.DefaultHouseSpec(),
	})
}
