package handler

import (
	"net/http"

	"github.com/cancer-not-cancer/api/internal/api/middleware"
	"github.com/cancer-not-cancer/api/internal/app/service"
	"github.com/cancer-not-cancer/api/internal/common"

	"github.com/go-chi/chi/v5"
)

// Uploads are buffered in memory up to this many bytes before spilling
// to temp files.
const maxUploadMemory = 32 << 20

type ImageHandler struct {
	imageService *service.ImageService
}

func NewImageHandler(imageService *service.ImageService) *ImageHandler {
	return &ImageHandler{imageService: imageService}
}

func (h *ImageHandler) RegisterRoutes(r chi.Router) {
	r.Get("/nextImage", h.nextImage)
}

func (h *ImageHandler) RegisterUploadRoutes(r chi.Router) {
	r.Post("/", h.upload)
}

func (h *ImageHandler) nextImage(w http.ResponseWriter, r *http.Request) {
	next, err := h.imageService.NextImage(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, next)
}

func (h *ImageHandler) upload(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid multipart payload: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	img, err := h.imageService.Upload(r.Context(), user.ID, clientIP(r), file, header)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, img)
}
