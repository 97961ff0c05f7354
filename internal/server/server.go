package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/shinyyama/localaid-backend/internal/config"
	"github.com/shinyyama/localaid-backend/internal/handler"
	appmw "github.com/shinyyama/localaid-backend/internal/middleware"
	"github.com/shinyyama/localaid-backend/internal/realtime"
	"github.com/shinyyama/localaid-backend/internal/repository"
	"github.com/shinyyama/localaid-backend/internal/service"
	"github.com/shinyyama/localaid-backend/internal/storage"
	"gorm.io/gorm"
)

// Deps are the collaborators main builds from config. Uploader and Suggester
// may be nil; their routes then answer 503.
type Deps struct {
	DB        *gorm.DB
	Hub       *realtime.Hub
	Verifier  appmw.TokenVerifier
	Uploader  storage.Uploader
	Suggester handler.PostSuggester
}

type Server struct {
	e   *echo.Echo
	hub *realtime.Hub
}

func New(cfg *config.Config, deps Deps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(appmw.RequestContext)

	allowOrigin := OriginPolicy(cfg.AllowedOrigins)
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) (bool, error) {
			return allowOrigin(origin), nil
		},
	}))

	userRepo := repository.NewUserRepository(deps.DB)
	convRepo := repository.NewConversationRepository(deps.DB)
	postRepo := repository.NewPostRepository(deps.DB)
	karmaRepo := repository.NewKarmaRepository(deps.DB)

	convSvc := service.NewConversationService(convRepo, userRepo)
	presenceSvc := service.NewPresenceService(deps.Hub, convSvc)
	notifySvc := service.NewNotificationService(deps.Hub)
	postSvc := service.NewPostService(postRepo)
	fulfillSvc := service.NewFulfillmentService(postRepo, convSvc, notifySvc)
	karmaSvc := service.NewKarmaService(karmaRepo)

	convHandler := handler.NewConversationHandler(convSvc, presenceSvc)
	postHandler := handler.NewPostHandler(postSvc, fulfillSvc)
	userHandler := handler.NewUserHandler(userRepo, convSvc)
	karmaHandler := handler.NewKarmaHandler(karmaSvc)
	uploadHandler := handler.NewUploadHandler(deps.Uploader, userRepo)
	aiHandler := handler.NewAIHandler(deps.Suggester)
	socketHandler := handler.NewSocketHandler(deps.Hub, presenceSvc, func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowOrigin(origin)
	}, cfg.WSSendBuffer, cfg.WSPongWait)

	authMw := appmw.NewAuthMiddleware(deps.Verifier, userRepo)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"ok":         "true",
			"git_sha":    cfg.GitSHA,
			"build_time": cfg.BuildTime,
			"realtime":   deps.Hub.Stats(),
		})
	})
	e.GET("/ws", socketHandler.Serve, authMw.RequireAuth)

	api := e.Group("/api")
	api.GET("/posts", postHandler.List)
	api.GET("/posts/:id", postHandler.Get)
	api.GET("/users/:uid/public", userHandler.GetPublic)

	authed := api.Group("", authMw.RequireAuth)
	authed.POST("/posts", postHandler.Create)
	authed.POST("/posts/suggest", aiHandler.Suggest)
	authed.DELETE("/posts/:id", postHandler.Delete)
	authed.PUT("/posts/:id/fulfill", postHandler.Fulfill)
	authed.GET("/me", userHandler.Me)
	authed.PUT("/me", userHandler.UpdateMe)
	authed.GET("/me/posts", postHandler.ListMine)
	authed.GET("/me/contacts", userHandler.Contacts)
	authed.GET("/me/karma", karmaHandler.Get)
	authed.GET("/conversations", convHandler.List)
	authed.POST("/conversations", convHandler.Create)
	authed.GET("/conversations/:id", convHandler.Get)
	authed.GET("/conversations/:id/messages", convHandler.ListMessages)
	authed.POST("/conversations/:id/messages", convHandler.CreateMessage)
	authed.POST("/upload/profile", uploadHandler.Profile)
	authed.POST("/upload/message-image", uploadHandler.MessageImage)

	return &Server{e: e, hub: deps.Hub}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

// Handler exposes the router for httptest servers.
func (s *Server) Handler() http.Handler {
	return s.e
}

// OriginPolicy allows local development, Vercel previews and any origin listed
// in ALLOWED_ORIGINS. The same policy guards CORS and websocket upgrades.
func OriginPolicy(extra []string) func(origin string) bool {
	allowed := make(map[string]struct{}, len(extra))
	for _, o := range extra {
		if o = strings.TrimRight(strings.ToLower(strings.TrimSpace(o)), "/"); o != "" {
			allowed[o] = struct{}{}
		}
	}
	return func(origin string) bool {
		low := strings.ToLower(origin)
		if _, ok := allowed[low]; ok {
			return true
		}
		if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
			strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return false
		}
		return strings.HasSuffix(u.Hostname(), ".vercel.app")
	}
}
