package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"anonymous_messages/internal/models"
	"anonymous_messages/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	sessionCookie  = "session"
	currentUserKey = "currentUser"
)

// currentUser returns the user bound to this request, or nil for anonymous visitors.
func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}

// sessionMiddleware resolves the session cookie into the request's current user.
// Bad or stale sessions are dropped and the request continues anonymously.
func (h *Handler) sessionMiddleware(c *gin.Context) {
	raw, err := c.Cookie(sessionCookie)
	if err != nil || raw == "" {
		c.Next()
		return
	}

	userID, err := h.services.ParseSession(raw)
	if err != nil {
		if h.log != nil {
			h.log.Debugw("session_rejected", "err", err)
		}
		h.clearSession(c)
		c.Next()
		return
	}

	u, err := h.services.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			h.clearSession(c)
			c.Next()
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errInternal, "session_load_user_failed", err, "user_id", userID)
		return
	}

	c.Set(currentUserKey, u)
	c.Next()
}

// requireSession sends anonymous visitors to the login page.
func (h *Handler) requireSession(c *gin.Context) {
	if currentUser(c) != nil {
		c.Next()
		return
	}
	h.redirect(c, "/login?next="+url.QueryEscape(c.Request.URL.RequestURI()), flashLoginRequired)
	c.Abort()
}

// redirectIfAuthenticated keeps signed-in users away from register/login.
func (h *Handler) redirectIfAuthenticated(c *gin.Context) {
	if currentUser(c) == nil {
		c.Next()
		return
	}
	h.redirect(c, "/dashboard")
	c.Abort()
}

func (h *Handler) startSession(c *gin.Context, token string) {
	h.setCookie(c, sessionCookie, token, h.opts.SessionMaxAge)
}

func (h *Handler) clearSession(c *gin.Context) {
	h.setCookie(c, sessionCookie, "", -1)
}

// requestLogger logs one line per request at a level chosen by status.
func (h *Handler) requestLogger(c *gin.Context) {
	if h.log == nil {
		c.Next()
		return
	}
	start := time.Now()
	c.Next()

	status := c.Writer.Status()
	fields := []interface{}{
		"method", c.Request.Method,
		"path", sanitizePath(c.Request.URL.Path),
		"status", status,
		"duration_ms", time.Since(start).Milliseconds(),
		"bytes_written", c.Writer.Size(),
	}
	switch {
	case status >= http.StatusInternalServerError:
		h.log.Errorw("http_request", fields...)
	case status >= http.StatusBadRequest:
		h.log.Warnw("http_request", fields...)
	default:
		h.log.Infow("http_request", fields...)
	}
}

// sanitizePath masks sharing tokens so access logs never leak live links.
func sanitizePath(path string) string {
	const prefix = "/send/"
	if strings.HasPrefix(path, prefix) && len(path) > len(prefix) {
		return prefix + "***"
	}
	return path
}
