package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)

	router.Route("/api", func(r chi.Router) {
		r.Get("/version", h.getServerVersion)

		r.Route("/users", func(r chi.Router) {
			r.Post("/", h.createUser)
			r.Get("/by-name/{name}", h.findUserByName)
			r.Get("/by-email/{email}", h.findUserByEmail)

			r.Route("/{userID}", func(r chi.Router) {
				r.Get("/", h.getUser)
				r.Put("/", h.updateUser)
				r.Delete("/", h.deleteUser)

				r.Get("/logins", h.getLogins)
				r.Post("/logins", h.addLogin)
				r.Delete("/logins/{provider}/{key}", h.removeLogin)

				r.Get("/claims", h.getClaims)
				r.Post("/claims", h.addClaims)
				r.Put("/claims", h.replaceClaim)
				r.Delete("/claims", h.removeClaims)

				r.Get("/roles", h.getRoles)
				r.Post("/roles", h.addToRole)
				r.Delete("/roles/{role}", h.removeFromRole)
			})
		})

		r.Route("/roles", func(r chi.Router) {
			r.Post("/", h.createRole)
			r.Get("/{role}/users", h.getUsersInRole)
		})

		r.Get("/claims/users", h.getUsersForClaim)
		r.Post("/claims/users", h.getUsersForClaims)
	})

	return router
}
