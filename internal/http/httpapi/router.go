package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"homedesign/internal/http/handlers"
	"homedesign/internal/infra"
	"homedesign/internal/middleware"
)

type Options struct {
	AllowedOrigins  []string
	RateLimitPerMin int
	Logger          *infra.Logger
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.Session,
		middleware.Logger(opts.Logger),
		chimw.Recoverer,
		middleware.CORS(opts.AllowedOrigins),
	)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/healthz", app.Health)
		r.Get("/catalog", app.Catalog)

		r.Route("/designs", func(r chi.Router) {
			r.With(middleware.RateLimit(opts.RateLimitPerMin, time.Minute)).Post("/", app.CreateDesign)
			r.Get("/{id}", app.GetDesign)
			r.Delete("/{id}", app.ResetDesign)
			r.Get("/{id}/report", app.DesignReport)
		})

		r.Get("/objects/{id}", app.GetObject)

		r.Route("/preferences", func(r chi.Router) {
			r.Get("/theme", app.GetTheme)
			r.Put("/theme", app.PutTheme)
		})
	})

	return r
}
