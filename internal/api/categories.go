package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/linkhub/internal/models"
)

// ListCategories handles GET /api/categories.
//
//	@Summary		List categories ordered by sort order
//	@Tags			categories
//	@Produce		json
//	@Param			department_id	query		string	false	"Restrict to a department scope"
//	@Param			tree			query		bool	false	"Return nested tree instead of flat list"
//	@Success		200				{array}		models.Category
//	@Security		BearerAuth
//	@Router			/categories [get]
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	departmentID := r.URL.Query().Get("department_id")

	var (
		cats []*models.Category
		err  error
	)
	if r.URL.Query().Get("tree") == "true" {
		cats, err = h.svc.CategoryTree(r.Context(), departmentID)
	} else {
		cats, err = h.svc.ListCategories(r.Context(), departmentID)
	}
	if err != nil {
		writeError(w, "list categories", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": cats})
}

// GetCategory handles GET /api/categories/{id}.
//
//	@Summary		Get a category by id
//	@Tags			categories
//	@Produce		json
//	@Param			id	path		string	true	"Category id"
//	@Success		200	{object}	models.Category
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/categories/{id} [get]
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	cat, err := h.svc.GetCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get category", err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// GetCategoryBySlug handles GET /api/categories/slug/{slug}.
//
//	@Summary		Get a category by slug within an optional department scope
//	@Tags			categories
//	@Produce		json
//	@Param			slug			path		string	true	"Category slug"
//	@Param			department_id	query		string	false	"Department scope"
//	@Success		200				{object}	models.Category
//	@Failure		404				{object}	errResponse
//	@Security		BearerAuth
//	@Router			/categories/slug/{slug} [get]
func (h *Handler) GetCategoryBySlug(w http.ResponseWriter, r *http.Request) {
	cat, err := h.svc.GetCategoryBySlug(r.Context(), chi.URLParam(r, "slug"), r.URL.Query().Get("department_id"))
	if err != nil {
		writeError(w, "get category by slug", err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// CreateCategory handles POST /api/categories.
//
//	@Summary		Create a category
//	@Tags			categories
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.CreateCategoryRequest	true	"Category to create"
//	@Success		201		{object}	models.Category
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/categories [post]
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req models.CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	cat, err := h.svc.CreateCategory(r.Context(), identityFrom(r), req)
	if err != nil {
		writeError(w, "create category", err)
		return
	}
	writeJSON(w, http.StatusCreated, cat)
}

// UpdateCategory handles PUT /api/categories/{id}.
//
//	@Summary		Apply a partial update to a category
//	@Tags			categories
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Category id"
//	@Param			body	body		models.UpdateCategoryRequest	true	"Fields to change"
//	@Success		200		{object}	models.Category
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/categories/{id} [put]
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var patch models.UpdateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	cat, err := h.svc.UpdateCategory(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, "update category", err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// DeleteCategory handles DELETE /api/categories/{id}. Links in the
// category are kept and become uncategorized.
//
//	@Summary		Delete a category
//	@Tags			categories
//	@Param			id	path	string	true	"Category id"
//	@Success		204	"Category deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/categories/{id} [delete]
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, "delete category", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReorderCategories handles PUT /api/categories/reorder.
//
//	@Summary		Reorder categories by the given id sequence
//	@Tags			categories
//	@Accept			json
//	@Param			body	body	ReorderRequest	true	"Ordered category ids"
//	@Success		204		"Order applied"
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/categories/reorder [put]
func (h *Handler) ReorderCategories(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if len(req.CategoryIDs) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("category_ids is required"))
		return
	}
	if err := h.svc.ReorderCategories(r.Context(), req.CategoryIDs); err != nil {
		writeError(w, "reorder categories", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
