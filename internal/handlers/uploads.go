package handlers

import (
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/petbond/backend/internal/logging"
)

// maxImageUpload bounds pet image uploads at 10 MiB.
const maxImageUpload = 10 << 20

// UploadHandler accepts pet image uploads and stores them in the object
// store. Uploads happen before signup completes, so the endpoint only
// validates the file, not the caller.
type UploadHandler struct {
	Images ImageStorage
}

// PetImage handles POST /api/v1/uploads/pet-image multipart requests. The
// response carries the public URL to embed in the pet profile.
func (h UploadHandler) PetImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Images == nil {
		logger.Error("image storage unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "uploads unavailable"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageUpload)
	if err := r.ParseMultipartForm(maxImageUpload); err != nil {
		logger.Warn("invalid upload payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid multipart payload"})
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "image file is required"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(path.Ext(header.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "unsupported image format"})
		return
	}

	key := fmt.Sprintf("pets/%s%s", uuid.NewString(), ext)
	url, err := h.Images.Save(ctx, key, file)
	if err != nil {
		logger.Error("image upload failed", "error", err, "key", key)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to store image"})
		return
	}

	logger.Info("pet image stored", "key", key)
	respondJSON(ctx, w, http.StatusCreated, map[string]string{"url": url})
}
