package projects_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solarplan/rooftop-backend/internal/auth"
	"github.com/solarplan/rooftop-backend/internal/projects"
	"github.com/solarplan/rooftop-backend/internal/projects/projectstest"
)

func newRouter(store projects.Store, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(auth.CtxUserID, userID)
	})
	projects.Register(r.Group("/projects"), store)
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

type projectResp struct {
	OK      bool              `json:"ok"`
	Error   string            `json:"error"`
	Project *projects.Project `json:"project"`
}

func decodeProject(t *testing.T, rr *httptest.ResponseRecorder) projectResp {
	t.Helper()
	var resp projectResp
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestCreateProjectFillsDefaults(t *testing.T) {
	r := newRouter(projectstest.New(), "owner-a")

	rr := do(t, r, "POST", "/projects", gin.H{"name": "P1", "data": gin.H{}})
	require.Equal(t, http.StatusCreated, rr.Code)

	resp := decodeProject(t, rr)
	require.NotNil(t, resp.Project)
	assert.Equal(t, 0.0, resp.Project.Document.Latitude)
	assert.Equal(t, 0.0, resp.Project.Document.Longitude)
	assert.Equal(t, 15.0, resp.Project.Document.Zoom)
	assert.Empty(t, resp.Project.Document.Polygons)
}

func TestCreateProjectPartialDataWins(t *testing.T) {
	r := newRouter(projectstest.New(), "owner-a")

	rr := do(t, r, "POST", "/projects", gin.H{
		"name": "P1",
		"data": gin.H{"latitude": 54.687, "longitude": 25.279},
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	resp := decodeProject(t, rr)
	assert.Equal(t, 54.687, resp.Project.Document.Latitude)
	assert.Equal(t, 25.279, resp.Project.Document.Longitude)
	assert.Equal(t, 15.0, resp.Project.Document.Zoom)
}

func TestCreateProjectRequiresName(t *testing.T) {
	r := newRouter(projectstest.New(), "owner-a")

	rr := do(t, r, "POST", "/projects", gin.H{"data": gin.H{}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateProjectDuplicateName(t *testing.T) {
	r := newRouter(projectstest.New(), "owner-a")

	rr := do(t, r, "POST", "/projects", gin.H{"name": "P1"})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = do(t, r, "POST", "/projects", gin.H{"name": "P1"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetProjectOwnershipMasksExistence(t *testing.T) {
	store := projectstest.New()
	ownerRouter := newRouter(store, "owner-a")
	otherRouter := newRouter(store, "owner-b")

	rr := do(t, ownerRouter, "POST", "/projects", gin.H{"name": "P1"})
	require.Equal(t, http.StatusCreated, rr.Code)
	id := decodeProject(t, rr).Project.ID

	// a foreign project and a nonexistent id must be indistinguishable
	foreign := do(t, otherRouter, "GET", "/projects/"+id, nil)
	missing := do(t, otherRouter, "GET", "/projects/roof-00000-0000", nil)

	assert.Equal(t, http.StatusNotFound, foreign.Code)
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.JSONEq(t, missing.Body.String(), foreign.Body.String())
}

func TestPatchProjectNameOnlyPreservesDocument(t *testing.T) {
	r := newRouter(projectstest.New(), "owner-a")

	rr := do(t, r, "POST", "/projects", gin.H{
		"name": "P1",
		"data": gin.H{"latitude": 10.0, "longitude": 20.0, "zoom": 12},
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	id := decodeProject(t, rr).Project.ID

	rr = do(t, r, "PATCH", "/projects/"+id, gin.H{"name": "Renamed"})
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decodeProject(t, rr)
	assert.Equal(t, "Renamed", resp.Project.Name)
	assert.Equal(t, 10.0, resp.Project.Document.Latitude)
	assert.Equal(t, 20.0, resp.Project.Document.Longitude)
	assert.Equal(t, 12.0, resp.Project.Document.Zoom)
}

func TestPatchProjectShallowMerge(t *testing.T) {
	r := newRouter(projectstest.New(), "owner-a")

	rr := do(t, r, "POST", "/projects", gin.H{
		"name": "P1",
		"data": gin.H{"latitude": 10.0, "longitude": 20.0},
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	id := decodeProject(t, rr).Project.ID

	rr = do(t, r, "PATCH", "/projects/"+id, gin.H{"data": gin.H{"zoom": 19}})
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decodeProject(t, rr)
	assert.Equal(t, 19.0, resp.Project.Document.Zoom)
	assert.Equal(t, 10.0, resp.Project.Document.Latitude)
	assert.Equal(t, 20.0, resp.Project.Document.Longitude)
}

func TestDeleteProject(t *testing.T) {
	r := newRouter(projectstest.New(), "owner-a")

	rr := do(t, r, "POST", "/projects", gin.H{"name": "P1"})
	require.Equal(t, http.StatusCreated, rr.Code)
	id := decodeProject(t, rr).Project.ID

	rr = do(t, r, "DELETE", "/projects/"+id, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	// a second delete reports NotFound, same as a nonexistent id
	rr = do(t, r, "DELETE", "/projects/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListProjectsScopedToOwner(t *testing.T) {
	store := projectstest.New()
	a := newRouter(store, "owner-a")
	b := newRouter(store, "owner-b")

	require.Equal(t, http.StatusCreated, do(t, a, "POST", "/projects", gin.H{"name": "A1"}).Code)
	require.Equal(t, http.StatusCreated, do(t, b, "POST", "/projects", gin.H{"name": "B1"}).Code)

	rr := do(t, a, "GET", "/projects", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Projects []projects.Project `json:"projects"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Projects, 1)
	assert.Equal(t, "A1", resp.Projects[0].Name)
}
