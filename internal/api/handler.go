package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"filament-station/config"
	"filament-station/internal/station"
	"filament-station/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	cfg     *config.Config
	store   store.Store
	station *station.Station
	webpush *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(cfg *config.Config, s store.Store, st *station.Station, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		cfg:     cfg,
		store:   s,
		station: st,
		webpush: webpushOptions,
	}
}
