package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/linkhub/internal/models"
)

// ListTags handles GET /api/tags, most-used first.
//
//	@Summary		List all tags
//	@Tags			tags
//	@Produce		json
//	@Success		200	{array}	models.Tag
//	@Security		BearerAuth
//	@Router			/tags [get]
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.ListTags(r.Context())
	if err != nil {
		writeError(w, "list tags", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tags": tags})
}

// SearchTags handles GET /api/tags/search.
//
//	@Summary		Autocomplete tags by name prefix or fragment
//	@Tags			tags
//	@Produce		json
//	@Param			q	query		string	true	"Name fragment"
//	@Success		200	{array}		models.Tag
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tags/search [get]
func (h *Handler) SearchTags(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	tags, err := h.svc.SearchTags(r.Context(), q)
	if err != nil {
		writeError(w, "search tags", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tags": tags})
}

// PopularTags handles GET /api/tags/popular.
//
//	@Summary		Most-used tags
//	@Tags			tags
//	@Produce		json
//	@Param			limit	query		int	false	"Max results"
//	@Success		200		{array}		models.Tag
//	@Security		BearerAuth
//	@Router			/tags/popular [get]
func (h *Handler) PopularTags(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	tags, err := h.svc.PopularTags(r.Context(), limit)
	if err != nil {
		writeError(w, "popular tags", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tags": tags})
}

// GetTag handles GET /api/tags/{id}.
//
//	@Summary		Get a tag by id
//	@Tags			tags
//	@Produce		json
//	@Param			id	path		string	true	"Tag id"
//	@Success		200	{object}	models.Tag
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tags/{id} [get]
func (h *Handler) GetTag(w http.ResponseWriter, r *http.Request) {
	tag, err := h.svc.GetTag(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get tag", err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

// CreateTag handles POST /api/tags.
//
//	@Summary		Create a tag
//	@Tags			tags
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.CreateTagRequest	true	"Tag to create"
//	@Success		201		{object}	models.Tag
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tags [post]
func (h *Handler) CreateTag(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req models.CreateTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	tag, err := h.svc.CreateTag(r.Context(), req)
	if err != nil {
		writeError(w, "create tag", err)
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

// GetOrCreateTag handles POST /api/tags/resolve. It returns the existing
// tag with the same derived slug, or creates one; concurrent callers with
// the same name all receive the same tag.
//
//	@Summary		Find a tag by name, creating it if absent
//	@Tags			tags
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.CreateTagRequest	true	"Tag name"
//	@Success		200		{object}	models.Tag
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tags/resolve [post]
func (h *Handler) GetOrCreateTag(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req models.CreateTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	tag, err := h.svc.GetOrCreateTag(r.Context(), req.Name, req.Color)
	if err != nil {
		writeError(w, "resolve tag", err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

// DeleteTag handles DELETE /api/tags/{id}. Associations are removed with
// the tag.
//
//	@Summary		Delete a tag
//	@Tags			tags
//	@Param			id	path	string	true	"Tag id"
//	@Success		204	"Tag deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tags/{id} [delete]
func (h *Handler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteTag(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, "delete tag", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TagsForLink handles GET /api/links/{id}/tags.
//
//	@Summary		Tags attached to a link
//	@Tags			tags
//	@Produce		json
//	@Param			id	path		string	true	"Link id"
//	@Success		200	{array}		models.Tag
//	@Security		BearerAuth
//	@Router			/links/{id}/tags [get]
func (h *Handler) TagsForLink(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.TagsForLink(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "tags for link", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tags": tags})
}
