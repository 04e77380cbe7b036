package polygons

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/solarplan/rooftop-backend/internal/auth"
	"github.com/solarplan/rooftop-backend/internal/projects"
)

type Handler struct {
	store projects.Store
}

// Register attaches the /roof-polygons endpoints.
func Register(rg *gin.RouterGroup, store projects.Store) *Handler {
	h := &Handler{store: store}

	rg.GET("", h.list)
	rg.POST("", h.create)
	rg.GET("/:polygon_id", h.get)
	rg.DELETE("/:polygon_id", h.delete)
	rg.PATCH("/:polygon_id/update-height", h.updateHeight)

	return h
}

// RegisterProjectSubroutes attaches the bulk height update under /projects.
func (h *Handler) RegisterProjectSubroutes(projectsGroup *gin.RouterGroup) {
	projectsGroup.PATCH("/:public_id/update-all-heights", h.updateAllHeights)
}

// loadProject resolves the project_id from the query string (or a fallback
// value from the body) and loads the owner-scoped project. Writes the error
// response itself on failure.
func (h *Handler) loadProject(c *gin.Context, fallbackID string) (*projects.Project, bool) {
	projectID := strings.TrimSpace(c.Query("project_id"))
	if projectID == "" {
		projectID = strings.TrimSpace(fallbackID)
	}
	if projectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "project_id is required"})
		return nil, false
	}

	p, err := h.store.Get(c.Request.Context(), auth.UserID(c), projectID)
	if err != nil {
		if errors.Is(err, projects.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		}
		return nil, false
	}
	return p, true
}

func (h *Handler) persist(c *gin.Context, p *projects.Project) bool {
	err := h.store.SaveDocument(c.Request.Context(), auth.UserID(c), p.ID, p.Document)
	if err != nil {
		if errors.Is(err, projects.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		}
		return false
	}
	return true
}

func (h *Handler) list(c *gin.Context) {
	p, ok := h.loadProject(c, "")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, p.Document.Polygons)
}

type createReq struct {
	ProjectID       string                `json:"project_id"`
	Coordinates     []projects.Coordinate `json:"coordinates"`
	TiltAngle       float64               `json:"tilt_angle"`
	BottomEdgeIndex *int                  `json:"bottom_edge_index"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	p, ok := h.loadProject(c, req.ProjectID)
	if !ok {
		return
	}

	poly, err := Add(&p.Document, req.Coordinates, req.TiltAngle, req.BottomEdgeIndex)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	if !h.persist(c, p) {
		return
	}
	c.JSON(http.StatusCreated, poly)
}

func (h *Handler) get(c *gin.Context) {
	p, ok := h.loadProject(c, "")
	if !ok {
		return
	}

	poly, err := Find(&p.Document, c.Param("polygon_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "polygon not found"})
		return
	}
	c.JSON(http.StatusOK, poly)
}

func (h *Handler) delete(c *gin.Context) {
	p, ok := h.loadProject(c, "")
	if !ok {
		return
	}

	if err := Remove(&p.Document, c.Param("polygon_id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "polygon not found"})
		return
	}

	if !h.persist(c, p) {
		return
	}
	c.Status(http.StatusNoContent)
}

type updateHeightReq struct {
	ProjectID  string               `json:"project_id"`
	HeightData *projects.HeightData `json:"height_data"`
}

// updateHeight replaces a single polygon's height model wholesale. The bulk
// endpoint below merges subfields instead; the split is deliberate and
// mirrors how the frontend uses the two paths.
func (h *Handler) updateHeight(c *gin.Context) {
	var req updateHeightReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	p, ok := h.loadProject(c, req.ProjectID)
	if !ok {
		return
	}

	if req.HeightData == nil {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "polygon not found"})
		return
	}

	if err := ReplaceHeightData(&p.Document, c.Param("polygon_id"), *req.HeightData); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "polygon not found"})
		return
	}

	if !h.persist(c, p) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

type updateAllHeightsReq struct {
	Polygons map[string]projects.HeightPatch `json:"polygons"`
	// HeightData is the legacy request shape, kept for older clients.
	HeightData map[string]projects.HeightPatch `json:"height_data"`
}

func (h *Handler) updateAllHeights(c *gin.Context) {
	var req updateAllHeightsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	p, err := h.store.Get(c.Request.Context(), auth.UserID(c), c.Param("public_id"))
	if err != nil {
		if errors.Is(err, projects.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		}
		return
	}

	updates := req.Polygons
	if updates == nil {
		updates = req.HeightData
	}

	updated := MergeHeights(&p.Document, updates)

	if !h.persist(c, p) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "updated": updated})
}
