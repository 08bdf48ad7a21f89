package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ListDepartments handles GET /api/departments.
//
//	@Summary		List departments
//	@Tags			departments
//	@Produce		json
//	@Param			tree	query		bool	false	"Return nested tree instead of flat list"
//	@Success		200		{array}		models.Department
//	@Security		BearerAuth
//	@Router			/departments [get]
func (h *Handler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("tree") == "true" {
		tree, err := h.svc.DepartmentTree(r.Context())
		if err != nil {
			writeError(w, "department tree", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"departments": tree})
		return
	}

	depts, err := h.svc.ListDepartments(r.Context())
	if err != nil {
		writeError(w, "list departments", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"departments": depts})
}

// GetDepartment handles GET /api/departments/{id}.
//
//	@Summary		Get a department by id
//	@Tags			departments
//	@Produce		json
//	@Param			id	path		string	true	"Department id"
//	@Success		200	{object}	models.Department
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/departments/{id} [get]
func (h *Handler) GetDepartment(w http.ResponseWriter, r *http.Request) {
	dept, err := h.svc.GetDepartment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get department", err)
		return
	}
	writeJSON(w, http.StatusOK, dept)
}
