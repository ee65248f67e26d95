package handlers

import (
	"github.com/dsmirnov/gophershop/internal/middlewares"
	"github.com/go-chi/chi/v5"
)

func NewRouter(api *API) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middlewares.Logger(api.log))
	r.Use(middlewares.Gzip)

	r.Route("/api", func(r chi.Router) {
		r.Post("/accounts/register", api.Register)
		r.Post("/accounts/login", api.Login)
		r.Get("/products", api.GetProducts)

		r.Group(func(r chi.Router) {
			r.Use(middlewares.Auth(api.jwtSecret))
			r.Post("/orders", api.PlaceOrder)
			r.Get("/orders", api.GetOrders)
			r.Get("/balance", api.GetBalance)
		})
	})
	return r
}
