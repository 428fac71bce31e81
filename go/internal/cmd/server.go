package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/grouptick/grouptick/go/clients/identity"
	"github.com/grouptick/grouptick/go/internal/group"
	"github.com/grouptick/grouptick/go/internal/timer"
)

// newRouter assembles the API server's routes
func newRouter(groupHandler *group.Handler, timerHandler *timer.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(identity.CallerMiddleware)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/groups", func(r chi.Router) {
		r.Post("/", groupHandler.Create)
		r.Get("/", groupHandler.List)
		r.Get("/{groupID}", groupHandler.Get)
		r.Mount("/{groupID}/timers", timerHandler.Routes())
	})

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", identity.CallerHeader},
	})

	return c.Handler(r)
}
