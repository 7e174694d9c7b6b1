package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cancer-not-cancer/api/internal/api/middleware"
	"github.com/cancer-not-cancer/api/internal/app/service"
	"github.com/cancer-not-cancer/api/internal/common"

	"github.com/go-chi/chi/v5"
)

type TaskHandler struct {
	taskService *service.TaskService
}

func NewTaskHandler(taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

func (h *TaskHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listOwned)
	r.Post("/", h.createTask)
	r.Get("/assigned", h.listAssigned)
	r.Get("/table", h.table)

	r.Route("/{taskID}", func(tr chi.Router) {
		tr.Put("/", h.updateTask)
		tr.Delete("/", h.deleteTask)
		tr.Get("/progress", h.quickProgress)
		tr.Get("/observers", h.observers)
		tr.Post("/observers", h.updateObservers)
		tr.Get("/tags", h.taskTags)
		tr.Post("/tags", h.updateTaskTags)
		tr.Get("/images", h.pickerImages)
		tr.Post("/images", h.updateTaskImages)
	})
}

func taskIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "taskID"), 10, 64)
}

func (h *TaskHandler) listOwned(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	tasks, err := h.taskService.ListOwned(r.Context(), user.ID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) listAssigned(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	tasks, err := h.taskService.ListAssigned(r.Context(), user.ID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) createTask(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	var req service.TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	task, err := h.taskService.CreateTask(r.Context(), user.ID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) updateTask(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	taskID, err := taskIDParam(r)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid task id")
		return
	}
	var req service.TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	if err := h.taskService.UpdateTask(r.Context(), user.ID, taskID, req); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *TaskHandler) deleteTask(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	taskID, err := taskIDParam(r)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid task id")
		return
	}
	if err := h.taskService.DeleteTask(r.Context(), user.ID, taskID); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *TaskHandler) table(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	rows, err := h.taskService.Table(r.Context(), user.ID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, rows)
}

func (h *TaskHandler) quickProgress(w http.ResponseWriter, r *http.Request) {
	taskID, err := taskIDParam(r)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid task id")
		return
	}
	progress, err := h.taskService.QuickProgress(r.Context(), taskID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]float64{"progress": progress})
}

func (h *TaskHandler) observers(w http.ResponseWriter, r *http.Request) {
	taskID, err := taskIDParam(r)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid task id")
		return
	}
	observers, err := h.taskService.Observers(r.Context(), taskID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, observers)
}

func (h *TaskHandler) updateObservers(w http.ResponseWriter, r *http.Request) {
	h.updateAssociations(w, r, "observerIds", h.taskService.UpdateObservers)
}

func (h *TaskHandler) taskTags(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	taskID, err := taskIDParam(r)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid task id")
		return
	}
	tags, err := h.taskService.TaskTags(r.Context(), user.ID, taskID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, tags)
}

func (h *TaskHandler) updateTaskTags(w http.ResponseWriter, r *http.Request) {
	h.updateAssociations(w, r, "tagIds", h.taskService.UpdateTaskTags)
}

func (h *TaskHandler) pickerImages(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	taskID, err := taskIDParam(r)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid task id")
		return
	}
	images, err := h.taskService.PickerImages(r.Context(), user.ID, taskID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, images)
}

func (h *TaskHandler) updateTaskImages(w http.ResponseWriter, r *http.Request) {
	h.updateAssociations(w, r, "imageIds", h.taskService.UpdateTaskImages)
}

// updateAssociations is the shared body of the three replace-all
// endpoints: decode the full desired id set and hand it to the service.
// An empty list is valid and clears the association.
func (h *TaskHandler) updateAssociations(
	w http.ResponseWriter,
	r *http.Request,
	field string,
	update func(ctx context.Context, taskID int64, ids []int64) error,
) {
	taskID, err := taskIDParam(r)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid task id")
		return
	}

	var body map[string][]int64
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	ids, ok := body[field]
	if !ok {
		common.RespondWithError(w, http.StatusBadRequest, "Missing "+field+" field")
		return
	}

	if err := update(r.Context(), taskID, ids); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusOK)
}
