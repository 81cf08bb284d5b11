package handlers

import (
	"errors"
	"io"
	"net/http"

	"anonymous_messages/internal/models"
	"anonymous_messages/internal/service"

	"github.com/gin-gonic/gin"
)

type sendInput struct {
	Message string `form:"message" json:"message"`
}

// resolveOwner maps the :token path parameter to its owner. It writes the 404
// or 500 itself and returns nil in that case.
func (h *Handler) resolveOwner(c *gin.Context) *models.User {
	owner, err := h.services.Resolve(c.Request.Context(), c.Param("token"))
	if err != nil {
		if errors.Is(err, service.ErrLinkNotFound) {
			h.notFound(c)
			return nil
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errInternal, "send_resolve_failed", err)
		return nil
	}
	return owner
}

// @Summary      Anonymous send form
// @Tags         send
// @Produce      json
// @Param        token  path  string  true  "Sharing token"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /send/{token} [get]
func (h *Handler) sendForm(c *gin.Context) {
	owner := h.resolveOwner(c)
	if owner == nil {
		return
	}
	h.render(c, http.StatusOK, viewSend, gin.H{"recipient": owner.Username})
}

// @Summary      Send an anonymous message
// @Tags         send
// @Accept       x-www-form-urlencoded,json
// @Produce      json
// @Param        token    path      string  true  "Sharing token"
// @Param        message  formData  string  true  "Message text"
// @Success      200  {object}  map[string]interface{}
// @Success      303  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /send/{token} [post]
func (h *Handler) sendMessage(c *gin.Context) {
	owner := h.resolveOwner(c)
	if owner == nil {
		return
	}

	// An empty JSON body is an empty submission, not a malformed one.
	var in sendInput
	if err := c.ShouldBind(&in); err != nil && !errors.Is(err, io.EOF) {
		if h.log != nil {
			h.log.Infow("send_bad_request_body", "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBody})
		return
	}

	m, err := h.services.Send(c.Request.Context(), owner.ID, in.Message)
	if err != nil {
		if errors.Is(err, service.ErrEmptyMessage) {
			h.render(c, http.StatusOK, viewSend, gin.H{"recipient": owner.Username})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errInternal, "send_store_failed", err, "owner_id", owner.ID)
		return
	}

	if h.log != nil {
		h.log.Infow("message_received", "owner_id", owner.ID, "message_id", m.ID)
	}
	h.redirect(c, c.Request.URL.Path, flashMessageSent)
}
