package panels

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/solarplan/rooftop-backend/internal/auth"
)

type Handler struct {
	repo *Repo
}

func Register(rg *gin.RouterGroup, repo *Repo) {
	h := &Handler{repo: repo}

	rg.GET("/manufacturers", h.manufacturers)
	rg.GET("/panels", h.list)
	rg.POST("/panels", h.create)
}

func (h *Handler) manufacturers(c *gin.Context) {
	items, err := h.repo.ListManufacturers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "manufacturers": items})
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.repo.ListVisible(c.Request.Context(), auth.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "panels": items})
}

func (h *Handler) create(c *gin.Context) {
	var req NewPanel
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	p, err := h.repo.Create(c.Request.Context(), auth.UserID(c), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "panel": p})
}
