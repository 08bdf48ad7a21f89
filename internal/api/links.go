package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/linkhub/internal/directory"
	"github.com/starford/linkhub/internal/models"
	"github.com/starford/linkhub/internal/sse"
)

// Handler holds the link, category and tag route handlers.
type Handler struct {
	svc    *directory.Service
	broker *sse.Broker // nil when events are disabled
}

// NewHandler creates a new Handler.
func NewHandler(svc *directory.Service, broker *sse.Broker) *Handler {
	return &Handler{svc: svc, broker: broker}
}

func (h *Handler) publish(kind, linkID string) {
	if h.broker != nil {
		h.broker.PublishLinkEvent(kind, linkID)
	}
}

// filterFromQuery builds a LinkFilter from URL query parameters.
func filterFromQuery(r *http.Request) models.LinkFilter {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	var tagIDs []string
	if raw := q.Get("tag_ids"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				tagIDs = append(tagIDs, id)
			}
		}
	}

	return models.LinkFilter{
		Query:        q.Get("q"),
		CategoryID:   q.Get("category_id"),
		DepartmentID: q.Get("department_id"),
		Status:       models.LinkStatus(q.Get("status")),
		Visibility:   models.Visibility(q.Get("visibility")),
		TagIDs:       tagIDs,
		SortBy:       q.Get("sort_by"),
		SortOrder:    q.Get("sort_order"),
		Limit:        limit,
		Offset:       offset,
	}
}

// SearchLinks handles GET /api/links.
//
//	@Summary		Search links with filtering and pagination
//	@Tags			links
//	@Produce		json
//	@Param			q			query		string	false	"Search query"
//	@Param			category_id	query		string	false	"Filter by category"
//	@Param			tag_ids		query		string	false	"Comma-separated tag ids (OR)"
//	@Param			status		query		string	false	"Filter by status"
//	@Param			limit		query		int		false	"Page size"
//	@Param			offset		query		int		false	"Page offset"
//	@Success		200			{object}	models.SearchLinksResponse
//	@Security		BearerAuth
//	@Router			/links [get]
func (h *Handler) SearchLinks(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.SearchLinks(r.Context(), identityFrom(r), filterFromQuery(r))
	if err != nil {
		writeError(w, "search links", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// RecentLinks handles GET /api/links/recent.
//
//	@Summary		Most recently created active links
//	@Tags			links
//	@Produce		json
//	@Param			limit	query		int	false	"Max results"
//	@Success		200		{array}		models.Link
//	@Security		BearerAuth
//	@Router			/links/recent [get]
func (h *Handler) RecentLinks(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	links, err := h.svc.RecentLinks(r.Context(), identityFrom(r), limit)
	if err != nil {
		writeError(w, "recent links", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"links": links})
}

// PopularLinks handles GET /api/links/popular.
//
//	@Summary		Most clicked active links
//	@Tags			links
//	@Produce		json
//	@Param			limit	query		int	false	"Max results"
//	@Success		200		{array}		models.Link
//	@Security		BearerAuth
//	@Router			/links/popular [get]
func (h *Handler) PopularLinks(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	links, err := h.svc.PopularLinks(r.Context(), identityFrom(r), limit)
	if err != nil {
		writeError(w, "popular links", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"links": links})
}

// GetLink handles GET /api/links/{id}.
//
//	@Summary		Get a single link by id
//	@Tags			links
//	@Produce		json
//	@Param			id	path		string	true	"Link id"
//	@Success		200	{object}	models.Link
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/links/{id} [get]
func (h *Handler) GetLink(w http.ResponseWriter, r *http.Request) {
	link, err := h.svc.GetLink(r.Context(), identityFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get link", err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

// GetLinkByShortCode handles GET /api/links/code/{code}.
//
//	@Summary		Resolve a link by its short code
//	@Tags			links
//	@Produce		json
//	@Param			code	path		string	true	"Short code"
//	@Success		200		{object}	models.Link
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/links/code/{code} [get]
func (h *Handler) GetLinkByShortCode(w http.ResponseWriter, r *http.Request) {
	link, err := h.svc.GetLinkByShortCode(r.Context(), identityFrom(r), chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, "get link by code", err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

// CreateLink handles POST /api/links.
//
//	@Summary		Create a link
//	@Tags			links
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.CreateLinkRequest	true	"Link to create"
//	@Success		201		{object}	models.Link
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/links [post]
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req models.CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	link, err := h.svc.CreateLink(r.Context(), identityFrom(r), req)
	if err != nil {
		writeError(w, "create link", err)
		return
	}
	h.publish("created", link.ID)
	writeJSON(w, http.StatusCreated, link)
}

// UpdateLink handles PUT /api/links/{id}.
//
//	@Summary		Apply a partial update to a link
//	@Tags			links
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Link id"
//	@Param			body	body		models.UpdateLinkRequest	true	"Fields to change"
//	@Success		200		{object}	models.Link
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/links/{id} [put]
func (h *Handler) UpdateLink(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var patch models.UpdateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	link, err := h.svc.UpdateLink(r.Context(), identityFrom(r), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, "update link", err)
		return
	}
	h.publish("updated", link.ID)
	writeJSON(w, http.StatusOK, link)
}

// DeleteLink handles DELETE /api/links/{id}.
//
//	@Summary		Delete a link
//	@Tags			links
//	@Param			id	path	string	true	"Link id"
//	@Success		204	"Link deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/links/{id} [delete]
func (h *Handler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteLink(r.Context(), identityFrom(r), id); err != nil {
		writeError(w, "delete link", err)
		return
	}
	h.publish("deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

// RecordAccess handles POST /api/links/{id}/access.
//
//	@Summary		Record a click on a link
//	@Tags			links
//	@Param			id	path	string	true	"Link id"
//	@Success		204	"Click recorded"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/links/{id}/access [post]
func (h *Handler) RecordAccess(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.RecordAccess(r.Context(), id); err != nil {
		writeError(w, "record access", err)
		return
	}
	h.publish("accessed", id)
	w.WriteHeader(http.StatusNoContent)
}

// RecordView handles POST /api/links/{id}/view.
//
//	@Summary		Record a detail view of a link
//	@Tags			links
//	@Param			id	path	string	true	"Link id"
//	@Success		204	"View recorded"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/links/{id}/view [post]
func (h *Handler) RecordView(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RecordView(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, "record view", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
