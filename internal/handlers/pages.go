package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary      Landing page
// @Tags         pages
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       / [get]
func (h *Handler) index(c *gin.Context) {
	h.render(c, http.StatusOK, viewIndex, nil)
}

// @Summary      Liveness probe
// @Tags         pages
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
