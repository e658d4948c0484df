package httpx

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/coin-storefront/internal/httpx/middlewares"
)

// NewRouter mounts the page, the form posts, the JSON API and the static
// assets. static is served at the site root (products.json, images/).
func NewRouter(handler *Handler, static fs.FS) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewares.AttachTracingMetadata)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	files := http.FileServerFS(static)
	r.Get("/products.json", files.ServeHTTP)
	r.Get("/images/*", files.ServeHTTP)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/api/catalog", handler.GetCatalog)
	r.Post("/api/catalog/reload", handler.ReloadCatalog)
	r.Get("/api/orders/{id}", handler.GetOrder)

	r.Group(func(r chi.Router) {
		r.Use(middlewares.AttachSession(handler.shop.Sessions))

		r.Get("/", handler.Index)
		r.Post("/cart/add", handler.FormAdd)
		r.Post("/cart/custom", handler.FormCustom)
		r.Post("/cart/update", handler.FormUpdate)
		r.Post("/cart/remove", handler.FormRemove)
		r.Post("/checkout", handler.FormCheckout)

		r.Get("/api/cart", handler.GetCart)
		r.Post("/api/cart/items", handler.AddItem)
		r.Post("/api/cart/custom", handler.AddCustom)
		r.Put("/api/cart/items/{id}", handler.UpdateQuantity)
		r.Delete("/api/cart/items/{id}", handler.RemoveItem)
		r.Put("/api/cart/identity", handler.SetIdentity)
		r.Post("/api/checkout", handler.Checkout)
	})

	return r
}
