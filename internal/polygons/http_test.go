package polygons_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solarplan/rooftop-backend/internal/auth"
	"github.com/solarplan/rooftop-backend/internal/polygons"
	"github.com/solarplan/rooftop-backend/internal/projects"
	"github.com/solarplan/rooftop-backend/internal/projects/projectstest"
)

func newRouter(store projects.Store, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(auth.CtxUserID, userID)
	})
	projectsGroup := r.Group("/projects")
	projects.Register(projectsGroup, store)
	h := polygons.Register(r.Group("/roof-polygons"), store)
	h.RegisterProjectSubroutes(projectsGroup)
	return r
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func createProject(t *testing.T, r *gin.Engine, name string) string {
	t.Helper()

	rr := do(t, r, "POST", "/projects", gin.H{"name": name, "data": gin.H{}})
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp struct {
		Project projects.Project `json:"project"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Project.ID
}

func triangleBody(projectID string) gin.H {
	return gin.H{
		"project_id": projectID,
		"coordinates": []gin.H{
			{"lat": 54.687, "lng": 25.279},
			{"lat": 54.688, "lng": 25.280},
			{"lat": 54.687, "lng": 25.281},
		},
		"tilt_angle": 30,
	}
}

func listPolygons(t *testing.T, r *gin.Engine, projectID string) []projects.Polygon {
	t.Helper()

	rr := do(t, r, "GET", "/roof-polygons?project_id="+projectID, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var out []projects.Polygon
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func TestCreatePolygonEndToEnd(t *testing.T) {
	r := newRouter(projectstest.New(), "owner-a")
	projectID := createProject(t, r, "P1")

	rr := do(t, r, "POST", "/roof-polygons", triangleBody(projectID))
	require.Equal(t, http.StatusCreated, rr.Code)

	var poly projects.Polygon
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &poly))
	assert.True(t, strings.HasPrefix(poly.ID, "p-"))
	assert.Equal(t, 30.0, poly.TiltAngle)
	assert.Empty(t, poly.Edges)

	require.Len(t, listPolygons(t, r, projectID), 1)

	// delete brings the list back to 0
	rr = do(t, r, "DELETE", "/roof-polygons/"+poly.ID+"?project_id="+projectID, nil)
	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, listPolygons(t, r, projectID))
}

func TestCreatePolygonRejectsInvalidCoordinates(t *testing.T) {
	r := newRouter(projectstest.New(), "owner-a")
	projectID := createProject(t, r, "P1")

	body := triangleBody(projectID)
	body["coordinates"] = []gin.H{{"lat": 1, "lng": 2}, {"lat": 3, "lng": 4}}
	rr := do(t, r, "POST", "/roof-polygons", body)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	delete(body, "coordinates")
	rr = do(t, r, "POST", "/roof-polygons", body)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	assert.Empty(t, listPolygons(t, r, projectID), "no polygon may be appended on failure")
}

func TestCreatePolygonUnknownProject(t *testing.T) {
	r := newRouter(projectstest.New(), "owner-a")

	rr := do(t, r, "POST", "/roof-polygons", triangleBody("roof-00000-0000"))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, r, "POST", "/roof-polygons", gin.H{"coordinates": []gin.H{}})
	assert.Equal(t, http.StatusBadRequest, rr.Code, "project_id is required")
}

func TestPolygonsScopedToOwner(t *testing.T) {
	store := projectstest.New()
	a := newRouter(store, "owner-a")
	b := newRouter(store, "owner-b")

	projectID := createProject(t, a, "P1")

	rr := do(t, b, "GET", "/roof-polygons?project_id="+projectID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code, "foreign project must look nonexistent")
}

func TestGetPolygon(t *testing.T) {
	r := newRouter(projectstest.New(), "owner-a")
	projectID := createProject(t, r, "P1")

	rr := do(t, r, "POST", "/roof-polygons", triangleBody(projectID))
	require.Equal(t, http.StatusCreated, rr.Code)
	var poly projects.Polygon
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &poly))

	rr = do(t, r, "GET", "/roof-polygons/"+poly.ID+"?project_id="+projectID, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, r, "GET", "/roof-polygons/p-missing?project_id="+projectID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUpdateHeightReplacesWholesale(t *testing.T) {
	r := newRouter(projectstest.New(), "owner-a")
	projectID := createProject(t, r, "P1")

	rr := do(t, r, "POST", "/roof-polygons", triangleBody(projectID))
	require.Equal(t, http.StatusCreated, rr.Code)
	var poly projects.Polygon
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &poly))

	rr = do(t, r, "PATCH", "/roof-polygons/"+poly.ID+"/update-height", gin.H{
		"project_id": projectID,
		"height_data": gin.H{
			"baseHeight":    4.5,
			"vertexHeights": gin.H{"0": 5.0},
		},
	})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"success"`)

	got := listPolygons(t, r, projectID)[0]
	assert.Equal(t, 4.5, got.HeightData.BaseHeight)
	assert.Equal(t, map[string]float64{"0": 5.0}, got.HeightData.VertexHeights)
	// wholesale replacement drops subfields missing from the request
	assert.Nil(t, got.HeightData.StableVertexHeights)
}

func TestUpdateHeightMissingPolygonOrField(t *testing.T) {
	r := newRouter(projectstest.New(), "owner-a")
	projectID := createProject(t, r, "P1")

	rr := do(t, r, "PATCH", "/roof-polygons/p-missing/update-height", gin.H{
		"project_id":  projectID,
		"height_data": gin.H{"baseHeight": 1},
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// a request without height_data never matches
	rr = do(t, r, "PATCH", "/roof-polygons/p-missing/update-height", gin.H{
		"project_id": projectID,
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUpdateAllHeightsMergesAndSkips(t *testing.T) {
	r := newRouter(projectstest.New(), "owner-a")
	projectID := createProject(t, r, "P1")

	rr := do(t, r, "POST", "/roof-polygons", triangleBody(projectID))
	require.Equal(t, http.StatusCreated, rr.Code)
	var poly projects.Polygon
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &poly))

	rr = do(t, r, "PATCH", "/projects/"+projectID+"/update-all-heights", gin.H{
		"polygons": gin.H{
			poly.ID:     gin.H{"baseHeight": 2.0},
			"p-deleted": gin.H{"baseHeight": 9.0},
		},
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Status  string `json:"status"`
		Updated int    `json:"updated"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, 1, resp.Updated)

	got := listPolygons(t, r, projectID)[0]
	assert.Equal(t, 2.0, got.HeightData.BaseHeight)
	// unspecified subfields survive the merge
	assert.Equal(t, map[string]float64{}, got.HeightData.VertexHeights)
}

func TestUpdateAllHeightsLegacyShape(t *testing.T) {
	r := newRouter(projectstest.New(), "owner-a")
	projectID := createProject(t, r, "P1")

	rr := do(t, r, "POST", "/roof-polygons", triangleBody(projectID))
	require.Equal(t, http.StatusCreated, rr.Code)
	var poly projects.Polygon
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &poly))

	rr = do(t, r, "PATCH", "/projects/"+projectID+"/update-all-heights", gin.H{
		"height_data": gin.H{
			poly.ID: gin.H{"stableVertexHeights": gin.H{"1": 3.5}},
		},
	})
	require.Equal(t, http.StatusOK, rr.Code)

	got := listPolygons(t, r, projectID)[0]
	assert.Equal(t, map[string]float64{"1": 3.5}, got.HeightData.StableVertexHeights)
}

func TestUpdateAllHeightsUnknownProject(t *testing.T) {
	r := newRouter(projectstest.New(), "owner-a")

	rr := do(t, r, "PATCH", "/projects/roof-00000-0000/update-all-heights", gin.H{
		"polygons": gin.H{},
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
