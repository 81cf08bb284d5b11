package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"anonymous_messages/internal/models"
	"anonymous_messages/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errFromInvalid   = "invalid 'from' time; use RFC3339, 'YYYY-MM-DD HH:MM:SS' or YYYY-MM-DD"
	errToInvalid     = "invalid 'to' time; use RFC3339, 'YYYY-MM-DD HH:MM:SS' or YYYY-MM-DD"
	errRangeInvalid  = "'from' must be <= 'to'"
	errStatusInvalid = "invalid 'status'; use read or unread"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

// isDateOnly reports whether the query string represents a date without time component.
func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

func parseQueryTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf(
		"invalid time format %q, expected one of: "+
			"RFC3339 (e.g. 2025-08-27T15:04:05Z), "+
			"'YYYY-MM-DD HH:MM:SS', "+
			"'YYYY-MM-DD'",
		s,
	)
}

// parseInboxFilter reads from/to/status. The returned string is the 400 message
// when the query is unusable.
func parseInboxFilter(c *gin.Context) (service.InboxFilter, string) {
	var (
		f   service.InboxFilter
		err error
	)
	if qs := c.Query("from"); qs != "" {
		if f.From, err = parseQueryTime(qs); err != nil {
			return f, errFromInvalid
		}
	}
	if qs := c.Query("to"); qs != "" {
		if f.To, err = parseQueryTime(qs); err != nil {
			return f, errToInvalid
		}
		// A bare date covers the whole day.
		if isDateOnly(qs) {
			f.To = f.To.Add(24*time.Hour - time.Nanosecond).UTC()
		}
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return f, errRangeInvalid
	}
	f.Status = strings.ToLower(strings.TrimSpace(c.Query("status")))
	switch f.Status {
	case "", service.StatusRead, service.StatusUnread:
	default:
		return f, errStatusInvalid
	}
	return f, ""
}

// shareURL builds the absolute sending address for a link token.
func (h *Handler) shareURL(c *gin.Context, token string) string {
	base := strings.TrimRight(h.opts.BaseURL, "/")
	if base == "" {
		scheme := "http"
		if c.Request.TLS != nil {
			scheme = "https"
		}
		if p := c.GetHeader("X-Forwarded-Proto"); p != "" {
			scheme = strings.ToLower(strings.TrimSpace(strings.Split(p, ",")[0]))
		}
		base = scheme + "://" + c.Request.Host
	}
	return base + "/send/" + token
}

// @Summary      Owner inbox
// @Description  Lists the current user's messages newest first. unread_count always covers the whole inbox. If 'to' is date-only it is end-of-day inclusive.
// @Tags         inbox
// @Produce      json
// @Param        from    query  string  false  "Start of range (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD')"  example(2025-08-01)
// @Param        to      query  string  false  "End of range (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD')"  example(2025-08-31)
// @Param        status  query  string  false  "Read status"  Enums(read,unread)
// @Success      200  {object}  map[string]interface{}  "messages, unread_count, total_count, share_link"
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /dashboard [get]
func (h *Handler) dashboard(c *gin.Context) {
	u := currentUser(c)
	f, msg := parseInboxFilter(c)
	if msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	d, err := h.services.Dashboard(c.Request.Context(), u.ID, f)
	if err != nil {
		if errors.Is(err, service.ErrInvalidFilter) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errInternal, "dashboard_load_failed", err, "user_id", u.ID)
		return
	}

	msgs := d.Messages
	if msgs == nil {
		msgs = []models.Message{}
	}
	h.render(c, http.StatusOK, viewDashboard, gin.H{
		"messages":     msgs,
		"unread_count": d.UnreadCount,
		"total_count":  d.TotalCount,
		"share_link":   h.shareURL(c, u.LinkToken),
	})
}

// @Summary      Read one message
// @Description  Marks the message read on first view. Only the owner may view it.
// @Tags         inbox
// @Produce      json
// @Param        id  path  int  true  "Message id"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /message/{id} [get]
func (h *Handler) viewMessage(c *gin.Context) {
	u := currentUser(c)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		h.notFound(c)
		return
	}

	m, err := h.services.View(c.Request.Context(), u.ID, id)
	switch {
	case errors.Is(err, service.ErrMessageNotFound):
		h.notFound(c)
		return
	case errors.Is(err, service.ErrForbidden):
		if h.log != nil {
			h.log.Warnw("message_access_denied", "user_id", u.ID, "message_id", id)
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": errForbidden})
		return
	case err != nil:
		h.logAndJSONError(c, http.StatusInternalServerError, errInternal, "message_view_failed", err, "user_id", u.ID, "message_id", id)
		return
	}

	h.render(c, http.StatusOK, viewMessage, gin.H{"message": m})
}

// @Summary      Rotate the sharing link
// @Description  The previous link stops resolving immediately.
// @Tags         inbox
// @Produce      json
// @Success      303  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /regenerate-link [get]
func (h *Handler) regenerateLink(c *gin.Context) {
	u := currentUser(c)
	if _, err := h.services.Regenerate(c.Request.Context(), u.ID); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errInternal, "link_regenerate_failed", err, "user_id", u.ID)
		return
	}
	if h.log != nil {
		h.log.Infow("link_regenerated", "user_id", u.ID)
	}
	h.redirect(c, "/dashboard", flashLinkRegenerate)
}
