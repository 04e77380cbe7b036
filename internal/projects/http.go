package projects

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/solarplan/rooftop-backend/internal/auth"
)

// Store is the persistence surface the HTTP layer needs. *Repo implements
// it; tests substitute an in-memory fake.
type Store interface {
	Create(ctx context.Context, ownerID, name string, doc Document) (*Project, error)
	List(ctx context.Context, ownerID string) ([]Project, error)
	Get(ctx context.Context, ownerID, publicID string) (*Project, error)
	Save(ctx context.Context, ownerID, publicID, name string, doc Document) (*Project, error)
	SaveDocument(ctx context.Context, ownerID, publicID string, doc Document) error
	Delete(ctx context.Context, ownerID, publicID string) error
}

type Handler struct {
	store Store
}

func Register(rg *gin.RouterGroup, store Store) *Handler {
	h := &Handler{store: store}

	rg.POST("", h.create)
	rg.GET("", h.list)
	rg.GET("/:public_id", h.get)
	rg.PATCH("/:public_id", h.patch)
	rg.DELETE("/:public_id", h.delete)

	return h
}

type createReq struct {
	Name string        `json:"name"`
	Data DocumentPatch `json:"data"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "name is required"})
		return
	}

	doc := MergeDocument(DefaultDocument(), req.Data)

	p, err := h.store.Create(c.Request.Context(), auth.UserID(c), strings.TrimSpace(req.Name), doc)
	if err != nil {
		if errors.Is(err, ErrDuplicateName) {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "project name already in use"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p})
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.store.List(c.Request.Context(), auth.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": items})
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.store.Get(c.Request.Context(), auth.UserID(c), c.Param("public_id"))
	if err != nil {
		respondProjectErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

type patchReq struct {
	Name *string        `json:"name"`
	Data *DocumentPatch `json:"data"`
}

// patch replaces the name wholesale when present and shallow-merges the
// document patch over the stored document. The merged row is written back in
// a single statement.
func (h *Handler) patch(c *gin.Context) {
	var req patchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	ownerID := auth.UserID(c)
	publicID := c.Param("public_id")

	p, err := h.store.Get(c.Request.Context(), ownerID, publicID)
	if err != nil {
		respondProjectErr(c, err)
		return
	}

	name := p.Name
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		name = strings.TrimSpace(*req.Name)
	}

	doc := p.Document
	if req.Data != nil {
		doc = MergeDocument(doc, *req.Data)
	}

	updated, err := h.store.Save(c.Request.Context(), ownerID, publicID, name, doc)
	if err != nil {
		if errors.Is(err, ErrDuplicateName) {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "project name already in use"})
			return
		}
		respondProjectErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "project": updated})
}

func (h *Handler) delete(c *gin.Context) {
	err := h.store.Delete(c.Request.Context(), auth.UserID(c), c.Param("public_id"))
	if err != nil {
		respondProjectErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func respondProjectErr(c *gin.Context, err error) {
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
}
