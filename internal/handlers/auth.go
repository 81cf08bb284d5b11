package handlers

import (
	"errors"
	"net/http"
	"strings"

	"anonymous_messages/internal/service"

	"github.com/gin-gonic/gin"
)

type registerInput struct {
	Username string `form:"username" json:"username" binding:"required"`
	Email    string `form:"email" json:"email" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

type loginInput struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
	Next     string `form:"next" json:"next"`
}

// bindOrRender binds a form or JSON body into dst. On failure it re-renders view
// with 400 and returns false.
func (h *Handler) bindOrRender(c *gin.Context, dst any, view, userMsg string) bool {
	if err := c.ShouldBind(dst); err != nil {
		if h.log != nil {
			h.log.Infow("auth_bad_request_body", "view", view, "err", err)
		}
		h.render(c, http.StatusBadRequest, view, gin.H{"error": userMsg})
		return false
	}
	return true
}

// @Summary      Registration form
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Success      303  {object}  map[string]string
// @Router       /register [get]
func (h *Handler) registerForm(c *gin.Context) {
	h.render(c, http.StatusOK, viewRegister, nil)
}

// @Summary      Create an account
// @Tags         auth
// @Accept       x-www-form-urlencoded,json
// @Produce      json
// @Param        username  formData  string  true  "Username"
// @Param        email     formData  string  true  "Email"
// @Param        password  formData  string  true  "Password"
// @Success      303  {object}  map[string]string
// @Failure      400  {object}  map[string]interface{}
// @Failure      409  {object}  map[string]interface{}
// @Router       /register [post]
func (h *Handler) register(c *gin.Context) {
	var in registerInput
	if !h.bindOrRender(c, &in, viewRegister, errRegisterFields) {
		return
	}

	id, err := h.services.SignUp(c.Request.Context(), service.SignUpInput{
		Username: in.Username,
		Email:    in.Email,
		Password: in.Password,
	})
	if err != nil {
		if h.log != nil {
			h.log.Infow("auth_sign_up_failed", "username", in.Username, "err", err)
		}
		switch {
		case errors.Is(err, service.ErrUsernameTaken):
			h.render(c, http.StatusConflict, viewRegister, gin.H{"error": errUsernameTaken})
		case errors.Is(err, service.ErrEmailTaken):
			h.render(c, http.StatusConflict, viewRegister, gin.H{"error": errEmailTaken})
		case errors.Is(err, service.ErrMissingFields):
			h.render(c, http.StatusBadRequest, viewRegister, gin.H{"error": errRegisterFields})
		default:
			h.logAndJSONError(c, http.StatusInternalServerError, errInternal, "auth_sign_up_error", err)
		}
		return
	}

	if h.log != nil {
		h.log.Infow("auth_user_registered", "user_id", id)
	}
	h.redirect(c, "/login", flashRegistered)
}

// @Summary      Login form
// @Tags         auth
// @Produce      json
// @Param        next  query  string  false  "Local path to return to after login"
// @Success      200  {object}  map[string]interface{}
// @Router       /login [get]
func (h *Handler) loginForm(c *gin.Context) {
	data := gin.H{}
	if next := safeNext(c.Query("next")); next != "" {
		data["next"] = next
	}
	h.render(c, http.StatusOK, viewLogin, data)
}

// @Summary      Sign in
// @Tags         auth
// @Accept       x-www-form-urlencoded,json
// @Produce      json
// @Param        username  formData  string  true   "Username"
// @Param        password  formData  string  true   "Password"
// @Param        next      formData  string  false  "Local path to return to"
// @Success      303  {object}  map[string]string
// @Failure      400  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]interface{}
// @Router       /login [post]
func (h *Handler) login(c *gin.Context) {
	var in loginInput
	if !h.bindOrRender(c, &in, viewLogin, errLoginFields) {
		return
	}

	u, err := h.services.SignIn(c.Request.Context(), in.Username, in.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			if h.log != nil {
				h.log.Infow("auth_sign_in_failed", "username", in.Username, "err", err)
			}
			h.render(c, http.StatusUnauthorized, viewLogin, gin.H{"error": errInvalidCredentials})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errInternal, "auth_sign_in_error", err)
		return
	}

	token, err := h.services.IssueSession(u.ID)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errInternal, "auth_issue_session_failed", err, "user_id", u.ID)
		return
	}
	h.startSession(c, token)

	dest := safeNext(in.Next)
	if dest == "" {
		dest = safeNext(c.Query("next"))
	}
	if dest == "" {
		dest = "/dashboard"
	}
	h.redirect(c, dest)
}

// @Summary      Sign out
// @Tags         auth
// @Produce      json
// @Success      303  {object}  map[string]string
// @Router       /logout [get]
func (h *Handler) logout(c *gin.Context) {
	h.clearSession(c)
	h.redirect(c, "/")
}

// safeNext accepts only site-local absolute paths.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.ContainsAny(next, "\\\r\n") {
		return ""
	}
	return next
}
