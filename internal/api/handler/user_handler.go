package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cancer-not-cancer/api/internal/app/service"
	"github.com/cancer-not-cancer/api/internal/common"
	"github.com/cancer-not-cancer/api/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listUsers)
	r.Post("/", h.createUser)
}

// DuplicateUserResponse is the 409 body when the email already exists.
type DuplicateUserResponse struct {
	Message string                    `json:"message"`
	User    service.CreateUserRequest `json:"user"`
}

func (h *UserHandler) createUser(w http.ResponseWriter, r *http.Request) {
	var req service.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// Wrong JSON types (e.g. numeric fullname) are a media problem,
		// not a generic bad request.
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			common.RespondWithError(w, http.StatusUnsupportedMediaType, "Invalid field type: "+typeErr.Field)
			return
		}
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	user, duplicate, err := h.userService.CreateUser(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	if duplicate {
		common.RespondWithJSON(w, http.StatusConflict, DuplicateUserResponse{
			Message: "Email already exists in database.",
			User:    req,
		})
		return
	}

	req.Password = ""
	req.Permissions = user.Permissions
	common.RespondWithJSON(w, http.StatusOK, req)
}

func (h *UserHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListUsers(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	if users == nil {
		users = []model.User{}
	}
	common.RespondWithJSON(w, http.StatusOK, users)
}
