// Package router assembles the HTTP surface.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shelfmark/shelfmark-go/internal/crypto"
	"github.com/shelfmark/shelfmark-go/internal/handler"
	"github.com/shelfmark/shelfmark-go/internal/middleware"
	"github.com/shelfmark/shelfmark-go/internal/repository"
	"github.com/shelfmark/shelfmark-go/internal/service"
)

// Deps are the collaborators the router wires together.
type Deps struct {
	Store   repository.UserStore
	Hasher  *crypto.Hasher
	Tokens  *crypto.TokenIssuer
	CORS    middleware.CORSOptions
	Metrics prometheus.Gatherer
}

// New builds the router. It fails only on invalid CORS patterns.
func New(deps Deps) (http.Handler, error) {
	corsMW, err := middleware.CORS(deps.CORS)
	if err != nil {
		return nil, err
	}

	authHandler := handler.NewAuthHandler(service.NewAuthService(deps.Store, deps.Hasher, deps.Tokens))
	favHandler := handler.NewFavouritesHandler(service.NewFavouritesService(deps.Store))

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger)
	r.Use(chimw.Recoverer)
	r.Use(corsMW)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/user", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(deps.Tokens, deps.Store))
			r.Get("/me", authHandler.HandleMe)

			r.Get("/favourites", favHandler.HandleList)
			r.Post("/favourites", favHandler.HandleAddFromBody)
			r.Put("/favourites/{id}", favHandler.HandleAdd)
			r.Delete("/favourites/{id}", favHandler.HandleRemove)
		})
	})

	return r, nil
}
