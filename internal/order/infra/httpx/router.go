package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", handler.CreateOrder)
		r.Get("/", handler.ListOrders)
		r.Get("/user/{userId}", handler.ListUserOrders)
		r.Get("/{id}", handler.GetOrder)
		r.Patch("/{id}/status", handler.UpdateStatus)
		r.Patch("/{id}/payment", handler.UpdatePayment)
	})
	r.Get("/health", handler.HealthCheck)

	return r
}
