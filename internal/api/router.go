package api

import (
	"net/http"
	"time"

	"github.com/cancer-not-cancer/api/internal/api/handler"
	"github.com/cancer-not-cancer/api/internal/api/middleware"
	"github.com/cancer-not-cancer/api/internal/app/service"
	"github.com/cancer-not-cancer/api/internal/common/security"
	"github.com/cancer-not-cancer/api/internal/domain/model"
	"github.com/cancer-not-cancer/api/internal/domain/repository"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	authService *service.AuthService,
	userService *service.UserService,
	imageService *service.ImageService,
	ratingService *service.RatingService,
	dataService *service.DataService,
	taskService *service.TaskService,
	tagService *service.TagService,
	userRepo repository.UserRepository,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Bearer tokens are an alternative to the session cookie for
	// scripted clients. Verifier only parses; Authenticator decides.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Login flow (public)
	authHandler := handler.NewAuthHandler(authService)
	authHandler.RegisterRoutes(r)

	imageHandler := handler.NewImageHandler(imageService)
	ratingHandler := handler.NewRatingHandler(ratingService)
	userHandler := handler.NewUserHandler(userService)
	dataHandler := handler.NewDataHandler(dataService)
	taskHandler := handler.NewTaskHandler(taskService)
	tagHandler := handler.NewTagHandler(tagService)

	// Everything below requires an authenticated user.
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.Authenticator(authService, userRepo))

		authHandler.RegisterProtectedRoutes(pr)

		// GET /nextImage: any authenticated user may fetch images.
		imageHandler.RegisterRoutes(pr.With(middleware.RequireCapability(model.CapViewImages)))

		// POST /archive: enabled pathologists only.
		ratingHandler.RegisterRoutes(pr.With(middleware.RequireCapability(model.CapGradeImages)))

		pr.With(middleware.RequireCapability(model.CapUploadImages)).
			Route("/images", imageHandler.RegisterUploadRoutes)

		pr.With(middleware.RequireCapability(model.CapManageUsers)).
			Route("/users", userHandler.RegisterRoutes)

		pr.With(middleware.RequireCapability(model.CapOwnTasks)).
			Route("/tasks", taskHandler.RegisterRoutes)

		pr.With(middleware.RequireCapability(model.CapOwnTasks)).
			Route("/data", dataHandler.RegisterRoutes)

		pr.With(middleware.RequireCapability(model.CapOwnTasks)).
			Route("/tags", tagHandler.RegisterRoutes)
	})

	return r
}
