package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ppetrovna/povarenok/internal/middleware"
)

// NewRouter builds the HTTP routing tree for the query engine.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	if len(h.config.API.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: h.config.API.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			MaxAge:         300,
		}))
	}

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		// Health endpoints skip rate limiting so monitoring never trips it.
		r.Route("/health", func(r chi.Router) {
			r.Get("/live", h.HealthLive)
			r.Get("/ready", h.HealthReady)
		})

		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(h.config.API.RateLimitReqs, h.config.API.RateLimitWindow))
			r.Use(middleware.Prometheus)

			r.Get("/recipes/random", h.RandomRecipe)
			r.Get("/recipes/categories/any", h.RecipesByCategoriesAny)
			r.Get("/recipes/categories/all", h.RecipesByCategoriesAll)
			r.Get("/recipes/ingredients/any", h.RecipesByIngredientsAny)
			r.Get("/recipes/ingredients/only", h.RecipesByIngredientsOnly)
			r.Get("/recipes/{id}", h.RecipeByID)
			r.Get("/menu/day", h.DailyMenu)
			r.Get("/categories", h.Categories)
			r.Get("/ingredients", h.Ingredients)
		})
	})

	return r
}
