package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jcmexdev/storefront-cart/internal/pkg/interceptors"
	"github.com/jcmexdev/storefront-cart/internal/storefront-api/httpx/middlewares"
)

// NewRouter mounts the API. Order endpoints require token when it is set.
func NewRouter(handler *Handler, token string) http.Handler {
	r := chi.NewRouter()
	r.Use(interceptors.RequestContext)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/products/{id}", handler.GetProduct)
	r.Group(func(r chi.Router) {
		r.Use(middlewares.RequireBearer(token))
		r.Post("/api/orders", handler.CreateOrder)
		r.Get("/api/orders/{id}", handler.GetOrderByID)
	})
	return otelhttp.NewHandler(r, "storefront-api")
}
