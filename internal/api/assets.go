package api

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/linkhub/internal/assets"
	"github.com/starford/linkhub/internal/directory"
	"github.com/starford/linkhub/internal/models"
)

const maxUploadBytes = 5 << 20 // 5 MB

// AssetHandler serves and accepts QR code images for links.
type AssetHandler struct {
	store assets.Store
	svc   *directory.Service
}

// NewAssetHandler creates a handler backed by the given asset store.
func NewAssetHandler(store assets.Store, svc *directory.Service) *AssetHandler {
	return &AssetHandler{store: store, svc: svc}
}

// UploadQRCode handles POST /api/links/{id}/qrcode (multipart/form-data,
// field "file"). The stored path is written back onto the link.
//
//	@Summary		Upload a QR code image for a link
//	@Tags			assets
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			id		path		string	true	"Link id"
//	@Param			file	formData	file	true	"Image file"
//	@Success		201		{object}	map[string]any
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/links/{id}/qrcode [post]
func (h *AssetHandler) UploadQRCode(w http.ResponseWriter, r *http.Request) {
	linkID := chi.URLParam(r, "id")
	ident := identityFrom(r)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	if _, err := assets.ValidateImageExt(header.Filename); err != nil {
		writeError(w, "upload qr code", err)
		return
	}

	// Scoped read first so callers cannot attach images to links they
	// cannot see.
	if _, err := h.svc.GetLink(r.Context(), ident, linkID); err != nil {
		writeError(w, "upload qr code", err)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read upload"))
		return
	}

	path := assets.QRCodePath(linkID, header.Filename)
	if err := h.store.Write(path, data); err != nil {
		writeError(w, "upload qr code", err)
		return
	}

	url := "/assets/" + path
	patch := models.UpdateLinkRequest{QRCodeURL: &url}
	if _, err := h.svc.UpdateLink(r.Context(), ident, linkID, patch); err != nil {
		writeError(w, "upload qr code", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"filename": header.Filename,
		"size":     len(data),
		"url":      url,
	})
}

// ServeAsset handles GET /assets/*.
func (h *AssetHandler) ServeAsset(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "*")
	data, err := h.store.Read(path)
	if err != nil {
		writeError(w, "serve asset", err)
		return
	}
	ctype, err := assets.ValidateImageExt(path)
	if err == nil {
		w.Header().Set("Content-Type", ctype)
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(data)
}
