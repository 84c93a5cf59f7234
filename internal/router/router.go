package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/FACorreiaa/go-household-registry/internal/api/city"
	"github.com/FACorreiaa/go-household-registry/internal/api/household"
	"github.com/FACorreiaa/go-household-registry/internal/api/neighborhood"
	"github.com/FACorreiaa/go-household-registry/internal/api/region"
)

// Config contains the handlers needed for the router setup.
type Config struct {
	CityHandler         *city.Handler
	HouseholdHandler    *household.Handler
	NeighborhoodHandler *neighborhood.Handler
	RegionHandler       *region.Handler
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) are expected to be
// applied before mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/households", cfg.HouseholdHandler.RegisterHousehold)
		r.Get("/households", cfg.HouseholdHandler.ListHouseholds)

		r.Get("/cities", cfg.CityHandler.ListCities)
		r.Get("/cities/{cityID}/neighborhoods", cfg.NeighborhoodHandler.ListNeighborhoods)
		r.Get("/cities/{cityID}/regions", cfg.RegionHandler.ListRegions)
		r.Post("/cities/{cityID}/regions", cfg.RegionHandler.CreateRegion)

		r.Post("/regions/{regionID}/assign", cfg.RegionHandler.AssignRegion)

		r.Put("/neighborhoods/region", cfg.RegionHandler.UpdateNeighborhoodsRegion)
		r.Post("/neighborhoods/merge", cfg.RegionHandler.MergeNeighborhoods)
	})

	return r
}
