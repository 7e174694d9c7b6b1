package handler

import (
	"net/http"
	"strconv"

	"github.com/cancer-not-cancer/api/internal/api/middleware"
	"github.com/cancer-not-cancer/api/internal/app/service"
	"github.com/cancer-not-cancer/api/internal/common"

	"github.com/go-chi/chi/v5"
)

type DataHandler struct {
	dataService *service.DataService
}

func NewDataHandler(dataService *service.DataService) *DataHandler {
	return &DataHandler{dataService: dataService}
}

func (h *DataHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.totals)
	r.Get("/perUsers", h.perUsers)
	r.Get("/perImages", h.perImages)
	r.Get("/export", h.export)
}

func (h *DataHandler) totals(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	taskID, err := optionalIDParam(r, "taskId")
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid taskId")
		return
	}

	totals, err := h.dataService.Totals(r.Context(), user.ID, taskID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, totals)
}

func (h *DataHandler) perUsers(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	taskID, err := optionalIDParam(r, "taskId")
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid taskId")
		return
	}

	rows, err := h.dataService.TotalsPerUser(r.Context(), user.ID, taskID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, rows)
}

func (h *DataHandler) perImages(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	taskID, err := optionalIDParam(r, "taskId")
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid taskId")
		return
	}

	rows, err := h.dataService.TotalsPerImage(r.Context(), user.ID, taskID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, rows)
}

func (h *DataHandler) export(w http.ResponseWriter, r *http.Request) {
	taskID, err := strconv.ParseInt(r.URL.Query().Get("taskId"), 10, 64)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid taskId")
		return
	}

	rows, err := h.dataService.Export(r.Context(), taskID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, rows)
}
