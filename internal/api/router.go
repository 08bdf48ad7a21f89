package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/linkhub/internal/assets"
	"github.com/starford/linkhub/internal/authn"
	"github.com/starford/linkhub/internal/directory"
	"github.com/starford/linkhub/internal/models"
	"github.com/starford/linkhub/internal/sse"
)

// NewRouter creates a chi router with all API routes mounted. Login and
// registration routes are open; everything else requires a Bearer session
// token. broker and assetStore may be nil to disable events and uploads.
func NewRouter(svc *directory.Service, auth *authn.Service, broker *sse.Broker, assetStore assets.Store) chi.Router {
	h := NewHandler(svc, broker)
	authH := NewAuthHandler(auth)

	r := chi.NewRouter()

	// Session bootstrap (unauthenticated).
	r.Post("/auth/register", authH.Register)
	r.Post("/auth/login", authH.Login)
	r.Get("/auth/lark", authH.LarkAuthorize)
	r.Get("/auth/lark/callback", authH.LarkCallback)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(auth))

		r.Get("/auth/me", authH.Me)

		// Links.
		r.Get("/links", h.SearchLinks)
		r.Post("/links", h.CreateLink)
		r.Get("/links/recent", h.RecentLinks)
		r.Get("/links/popular", h.PopularLinks)
		r.Get("/links/code/{code}", h.GetLinkByShortCode)
		r.Get("/links/{id}", h.GetLink)
		r.Put("/links/{id}", h.UpdateLink)
		r.Delete("/links/{id}", h.DeleteLink)
		r.Post("/links/{id}/access", h.RecordAccess)
		r.Post("/links/{id}/view", h.RecordView)
		r.Get("/links/{id}/tags", h.TagsForLink)

		// Categories. Structure changes are manager-level.
		r.Get("/categories", h.ListCategories)
		r.Get("/categories/slug/{slug}", h.GetCategoryBySlug)
		r.Get("/categories/{id}", h.GetCategory)
		r.Group(func(r chi.Router) {
			r.Use(RequireRole(models.RoleAdmin, models.RoleManager))
			r.Post("/categories", h.CreateCategory)
			r.Put("/categories/reorder", h.ReorderCategories)
			r.Put("/categories/{id}", h.UpdateCategory)
			r.Delete("/categories/{id}", h.DeleteCategory)
		})

		// Tags.
		r.Get("/tags", h.ListTags)
		r.Post("/tags", h.CreateTag)
		r.Post("/tags/resolve", h.GetOrCreateTag)
		r.Get("/tags/search", h.SearchTags)
		r.Get("/tags/popular", h.PopularTags)
		r.Get("/tags/{id}", h.GetTag)
		r.With(RequireRole(models.RoleAdmin, models.RoleManager)).Delete("/tags/{id}", h.DeleteTag)

		// Departments (read-only; rows come from the HR sync).
		r.Get("/departments", h.ListDepartments)
		r.Get("/departments/{id}", h.GetDepartment)

		// QR code uploads.
		if assetStore != nil {
			assetH := NewAssetHandler(assetStore, svc)
			r.Post("/links/{id}/qrcode", assetH.UploadQRCode)
		}

		// SSE endpoint (protected by same auth middleware).
		if broker != nil {
			r.Get("/events", broker.ServeHTTP)
		}
	})

	return r
}

// NewAssetRouter serves stored assets outside the /api prefix.
func NewAssetRouter(assetStore assets.Store, svc *directory.Service) http.Handler {
	h := NewAssetHandler(assetStore, svc)
	r := chi.NewRouter()
	r.Get("/*", h.ServeAsset)
	return r
}
