package handlers

import (
	_ "anonymous_messages/docs" // registers swagger docs
	"anonymous_messages/internal/logger"
	"anonymous_messages/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Options carries the HTTP-facing settings the handlers need.
type Options struct {
	// BaseURL is the scheme://host prefix for share links; empty derives it per request.
	BaseURL string
	// SecureCookies marks session and flash cookies Secure (set when serving TLS).
	SecureCookies bool
	// SessionMaxAge bounds the session cookie lifetime in seconds; 0 means a browser-session cookie.
	SessionMaxAge int
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	opts     Options
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts Options) *Handler {
	return &Handler{services: services, log: log, opts: opts}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestLogger, h.sessionMiddleware)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", h.health)
	router.GET("/", h.index)

	h.registerAuthRoutes(router)
	h.registerSendRoutes(router)
	h.registerInboxRoutes(router)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	guest := r.Group("", h.redirectIfAuthenticated)
	{
		guest.GET("/register", h.registerForm)
		guest.POST("/register", h.register)
		guest.GET("/login", h.loginForm)
		guest.POST("/login", h.login)
	}
	r.GET("/logout", h.requireSession, h.logout)
}

func (h *Handler) registerSendRoutes(r *gin.Engine) {
	send := r.Group("/send")
	{
		send.GET("/:token", h.sendForm)
		send.POST("/:token", h.sendMessage)
	}
}

func (h *Handler) registerInboxRoutes(r *gin.Engine) {
	inbox := r.Group("", h.requireSession)
	{
		inbox.GET("/dashboard", h.dashboard)
		inbox.GET("/message/:id", h.viewMessage)
		inbox.GET("/regenerate-link", h.regenerateLink)
		inbox.GET("/ws/inbox", h.wsInbox)
	}
}
