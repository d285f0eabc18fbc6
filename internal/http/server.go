package httpapi

import (
	"net/http"
	"time"

	"astro-admin-go/internal/config"
	"astro-admin-go/internal/services"
	"astro-admin-go/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

// Server exposes the store to the browser UI running on the operator's
// machine. Requests to the content backend go through the catalogue's
// slices, so every change is also pushed on /ws/state.
type Server struct {
	Config    config.Config
	Catalogue *services.Catalogue
	Store     *store.Store
	Auth      *services.Auth
	Media     *services.Media
	Hub       *services.StateHub
	Log       logrus.FieldLogger
	Started   time.Time
}

func NewServer(cfg config.Config, catalogue *services.Catalogue, auth *services.Auth, media *services.Media, hub *services.StateHub, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{
		Config:    cfg,
		Catalogue: catalogue,
		Store:     catalogue.Store,
		Auth:      auth,
		Media:     media,
		Hub:       hub,
		Log:       log,
		Started:   time.Now(),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger(s.Log))
	if len(s.Config.CorsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.Config.CorsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/login", s.Login)
		api.Post("/auth/logout", s.Logout)
		api.Get("/health", s.Health)
		api.Get("/pagination", s.Pagination)

		api.Group(func(private chi.Router) {
			private.Use(RequireSession(s.Auth))
			private.Get("/auth/me", s.Me)
			private.Get("/state", s.State)
			private.Get("/state/{slice}", s.SliceState)
			private.Post("/refresh", s.Refresh)
			private.Post("/articles/{id}/thumbnail", s.UploadThumbnail)

			private.Route("/{slice}", func(slice chi.Router) {
				slice.Use(RequireSliceAccess(s.Store))
				slice.Get("/", s.ListEntities)
				slice.Post("/", s.CreateEntity)
				slice.Get("/{id}", s.GetEntity)
				slice.Put("/{id}", s.UpdateEntity)
				slice.Patch("/{id}", s.PatchEntity)
				slice.Delete("/{id}", s.DeleteEntity)
			})
		})
	})

	r.With(RequireSession(s.Auth)).Get("/ws/state", s.StateSocket)
	return r
}
