package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// View names rendered by the handlers.
const (
	viewIndex     = "index"
	viewRegister  = "register"
	viewLogin     = "login"
	viewDashboard = "dashboard"
	viewSend      = "send"
	viewMessage   = "message"
)

// User-facing texts.
const (
	flashRegistered     = "Registration successful! Please log in."
	flashMessageSent    = "Message sent anonymously!"
	flashLinkRegenerate = "Your anonymous link has been regenerated!"
	flashLoginRequired  = "Please log in to access this page."

	errUsernameTaken      = "Username already exists"
	errEmailTaken         = "Email already exists"
	errRegisterFields     = "username, email and password are required"
	errInvalidCredentials = "Invalid username or password"
	errLoginFields        = "username and password are required"
	errNotFound           = "not found"
	errForbidden          = "forbidden"
	errInternal           = "internal error"
	errInvalidBody        = "invalid body"
)

const (
	flashCookie    = "flash"
	flashSeparator = "\n"
	flashMaxAge    = 60 // seconds
)

// render writes a JSON view model, consuming any pending flash messages.
func (h *Handler) render(c *gin.Context, code int, view string, data gin.H) {
	resp := gin.H{"view": view}
	if flashes := h.popFlashes(c); len(flashes) > 0 {
		resp["flashes"] = flashes
	}
	if u := currentUser(c); u != nil {
		resp["current_user"] = u.Username
	}
	for k, v := range data {
		resp[k] = v
	}
	c.JSON(code, resp)
}

// redirect answers 303 See Other, queueing flash messages for the next view.
func (h *Handler) redirect(c *gin.Context, location string, flashes ...string) {
	if len(flashes) > 0 {
		h.pushFlashes(c, flashes...)
	}
	c.Header("Location", location)
	c.JSON(http.StatusSeeOther, gin.H{"redirect": location})
}

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.AbortWithStatusJSON(httpCode, gin.H{"error": userMsg})
}

func (h *Handler) notFound(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": errNotFound})
}

func (h *Handler) pushFlashes(c *gin.Context, flashes ...string) {
	pending := readFlashes(c)
	pending = append(pending, flashes...)
	h.setCookie(c, flashCookie, strings.Join(pending, flashSeparator), flashMaxAge)
}

func (h *Handler) popFlashes(c *gin.Context) []string {
	flashes := readFlashes(c)
	if len(flashes) > 0 {
		h.setCookie(c, flashCookie, "", -1)
	}
	return flashes
}

func readFlashes(c *gin.Context) []string {
	raw, err := c.Cookie(flashCookie)
	if err != nil || raw == "" {
		return nil
	}
	return strings.Split(raw, flashSeparator)
}

// setCookie writes an HttpOnly, SameSite=Lax cookie scoped to the whole site.
func (h *Handler) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", h.opts.SecureCookies, true)
}
