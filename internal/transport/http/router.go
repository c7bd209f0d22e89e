package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/taskboard/backend/internal/config"
	"github.com/taskboard/backend/internal/core/ports"
	"github.com/taskboard/backend/internal/core/services"
	"github.com/taskboard/backend/internal/domain"
	"github.com/taskboard/backend/internal/infrastructure/auth"
	"github.com/taskboard/backend/internal/infrastructure/db"
	"github.com/taskboard/backend/internal/infrastructure/logger"
	"github.com/taskboard/backend/internal/transport/http/handlers"
	httpmw "github.com/taskboard/backend/internal/transport/http/middleware"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RouterConfig struct {
	DB     *gorm.DB
	Logger *logger.Logger
	Config *config.Config
	Files  ports.FileStore
	Tokens *auth.TokenIssuer
	// Hasher defaults to bcrypt at the default cost.
	Hasher ports.PasswordHasher
}

// SetupRoutes wires repositories, services and handlers under /api/v1. The
// user service is returned so startup can bootstrap the first admin.
func SetupRoutes(app *fiber.App, cfg RouterConfig) ports.UserService {
	log := cfg.Logger
	hasher := cfg.Hasher
	if hasher == nil {
		hasher = auth.NewBcryptHasher(bcrypt.DefaultCost)
	}
	pager := services.Pager{
		DefaultSize: cfg.Config.Pagination.DefaultSize,
		MaxSize:     cfg.Config.Pagination.MaxSize,
	}
	messages := services.NewMessages(cfg.Config.Notifications.Locale)

	// Initialize repositories
	repos := db.NewRepositories(cfg.DB, log)
	uow := db.NewUnitOfWork(cfg.DB, log)

	// Initialize services
	taskService := services.NewTaskService(services.TaskServiceConfig{
		Repos:       repos,
		UnitOfWork:  uow,
		Files:       cfg.Files,
		Messages:    messages,
		Logger:      log.Named("tasks"),
		Pager:       pager,
		EnableLocks: cfg.Config.Features.EnableLocks,
	})
	labelService := services.NewLabelService(services.LabelServiceConfig{
		Labels: repos.Labels,
		Tasks:  repos.Tasks,
		Logger: log.Named("labels"),
		Pager:  pager,
	})
	commentService := services.NewCommentService(services.CommentServiceConfig{
		Repos:      repos,
		UnitOfWork: uow,
		Messages:   messages,
		Logger:     log.Named("comments"),
		Pager:      pager,
	})
	attachmentService := services.NewAttachmentService(services.AttachmentServiceConfig{
		Attachments: repos.Attachments,
		Tasks:       repos.Tasks,
		Files:       cfg.Files,
		Logger:      log.Named("attachments"),
		Pager:       pager,
	})
	notificationService := services.NewNotificationService(services.NotificationServiceConfig{
		Notifications: repos.Notifications,
		Logger:        log.Named("notifications"),
		Pager:         pager,
	})
	userService := services.NewUserService(services.UserServiceConfig{
		Users:       repos.Users,
		Hasher:      hasher,
		Attachments: repos.Attachments,
		Files:       cfg.Files,
		Logger:      log.Named("users"),
		Pager:       pager,
	})
	authService := services.NewAuthService(services.AuthServiceConfig{
		Users:  repos.Users,
		Hasher: hasher,
		Tokens: cfg.Tokens,
		Logger: log.Named("auth"),
	})

	// Initialize handlers
	taskHandler := handlers.NewTaskHandler(taskService, log)
	labelHandler := handlers.NewLabelHandler(labelService, log)
	commentHandler := handlers.NewCommentHandler(commentService, log)
	attachmentHandler := handlers.NewAttachmentHandler(attachmentService, log)
	notificationHandler := handlers.NewNotificationHandler(notificationService, log)
	userHandler := handlers.NewUserHandler(userService, log)
	authHandler := handlers.NewAuthHandler(authService, log)

	authn := httpmw.Authenticate(cfg.Tokens, log)
	adminOnly := httpmw.RequireRole(domain.RoleAdmin)

	// API v1 routes
	api := app.Group("/api/v1")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/signup", authHandler.Signup)
	authGroup.Post("/login", authHandler.Login)

	// Task routes; fixed paths go before /:id
	tasks := api.Group("/tasks", authn)
	tasks.Post("/", taskHandler.CreateTask)
	tasks.Get("/", taskHandler.ListTasks)
	tasks.Get("/search", taskHandler.SearchTasks)
	tasks.Get("/board", taskHandler.GetBoard)
	tasks.Get("/analytics", adminOnly, taskHandler.GetAnalytics)
	tasks.Get("/user/:userId", taskHandler.ListTasksByUser)
	tasks.Get("/:id", taskHandler.GetTask)
	tasks.Put("/:id", taskHandler.UpdateTask)
	tasks.Patch("/:id", taskHandler.UpdateTask)
	tasks.Delete("/:id", taskHandler.DeleteTask)
	tasks.Get("/:id/history", taskHandler.GetHistory)
	tasks.Get("/:id/labels", labelHandler.GetTaskLabels)
	tasks.Post("/:id/labels/:labelId", taskHandler.AddLabel)
	tasks.Delete("/:id/labels/:labelId", taskHandler.RemoveLabel)
	tasks.Get("/:id/comments", commentHandler.ListTaskComments)
	tasks.Get("/:id/attachments", attachmentHandler.ListByTask)
	tasks.Post("/:id/attachments", attachmentHandler.Upload)

	// Label routes
	labels := api.Group("/labels", authn)
	labels.Post("/", adminOnly, labelHandler.CreateLabel)
	labels.Get("/", labelHandler.ListLabels)
	labels.Get("/search", labelHandler.SearchLabels)
	labels.Get("/:id", labelHandler.GetLabel)
	labels.Put("/:id", adminOnly, labelHandler.UpdateLabel)
	labels.Delete("/:id", adminOnly, labelHandler.DeleteLabel)

	// Comment routes
	comments := api.Group("/comments", authn)
	comments.Post("/", commentHandler.CreateComment)
	comments.Put("/:id", commentHandler.UpdateComment)
	comments.Delete("/:id", commentHandler.DeleteComment)

	// Attachment routes
	attachments := api.Group("/attachments", authn)
	attachments.Get("/:id", attachmentHandler.GetAttachment)
	attachments.Get("/:id/download", attachmentHandler.Download)
	attachments.Delete("/:id", attachmentHandler.DeleteAttachment)

	// Notification routes
	notifications := api.Group("/notifications", authn)
	notifications.Get("/user/:userId", notificationHandler.ListForUser)
	notifications.Get("/user/:userId/unread", notificationHandler.ListUnread)
	notifications.Get("/user/:userId/count-unread", notificationHandler.CountUnread)
	notifications.Get("/:id", notificationHandler.GetNotification)
	notifications.Put("/:id/mark-read", notificationHandler.MarkAsRead)
	notifications.Delete("/:id", notificationHandler.DeleteNotification)

	// User administration
	users := api.Group("/users", authn, adminOnly)
	users.Get("/", userHandler.SearchUsers)
	users.Post("/", userHandler.CreateUser)
	users.Get("/:id", userHandler.GetUser)
	users.Put("/:id", userHandler.UpdateUser)
	users.Put("/:id/role", userHandler.UpdateRole)
	users.Delete("/:id", userHandler.DeleteUser)

	return userService
}
