package summary

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/healthconnect/portal/internal/middleware"
	"github.com/healthconnect/portal/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeDirectory struct {
	users   map[string]*models.UserModel
	records map[string]*models.EHRModel
}

func (d *fakeDirectory) FindUser(_ context.Context, id string) (*models.UserModel, error) {
	if u, ok := d.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (d *fakeDirectory) FindEHRByPatient(_ context.Context, patientID string) (*models.EHRModel, error) {
	if r, ok := d.records[patientID]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func newDirectory() *fakeDirectory {
	return &fakeDirectory{
		users: map[string]*models.UserModel{
			"doctor1":  {Base: models.Base{ID: "doctor1"}, Role: models.RoleDoctor, VerificationStatus: models.VerificationVerified},
			"doctor2":  {Base: models.Base{ID: "doctor2"}, Role: models.RoleDoctor, VerificationStatus: models.VerificationPending},
			"patient1": {Base: models.Base{ID: "patient1"}, Role: models.RolePatient},
		},
		records: map[string]*models.EHRModel{
			"patient1": {PatientID: "patient1", FullRecord: "Patient: Liam Carter"},
		},
	}
}

// headerAuth reads the caller from X-User / X-Role.
func headerAuth(c *gin.Context) {
	c.Set(middleware.ContextKeyUserID, c.GetHeader("X-User"))
	c.Set(middleware.ContextKeyRole, models.Role(c.GetHeader("X-Role")))
	c.Next()
}

func newTestHandler(gen Generator) (*Handler, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	svc := NewService(gen)
	h := NewHandler(svc, NewRegistry(svc, nil, nil), newDirectory())
	r := gin.New()
	h.RegisterRoutes(r.Group("/api/v1"), headerAuth, func(c *gin.Context) { c.Next() })
	return h, r
}

func call(r http.Handler, method, target, user string, role models.Role, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("X-User", user)
	req.Header.Set("X-Role", string(role))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGenerateEndpoint(t *testing.T) {
	gen := new(mockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(`{"summary":"Patient X is healthy."}`, nil)
	_, r := newTestHandler(gen)

	w := call(r, http.MethodPost, "/api/v1/ai/ehr-summary", "doctor1", models.RoleDoctor, `{"ehrData":"Patient X, BP 120/80..."}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"summary":"Patient X is healthy."}`, w.Body.String())

	w = call(r, http.MethodPost, "/api/v1/ai/ehr-summary", "doctor1", models.RoleDoctor, `{"ehrData":""}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"error":"`+GenericFailureMessage+`"}`, w.Body.String())
	gen.AssertNumberOfCalls(t, "Generate", 1)
}

func TestGenerateEndpointRequiresVerifiedDoctor(t *testing.T) {
	gen := new(mockGenerator)
	_, r := newTestHandler(gen)

	w := call(r, http.MethodPost, "/api/v1/ai/ehr-summary", "doctor2", models.RoleDoctor, `{"ehrData":"x"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = call(r, http.MethodPost, "/api/v1/ai/ehr-summary", "patient1", models.RolePatient, `{"ehrData":"x"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = call(r, http.MethodPost, "/api/v1/ai/ehr-summary", "ghost", models.RoleDoctor, `{"ehrData":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestSurfaceLifecycle(t *testing.T) {
	gen := newBlockingGenerator()
	_, r := newTestHandler(gen)
	const target = "/api/v1/patients/patient1/summary"

	w := call(r, http.MethodGet, target, "doctor1", models.RoleDoctor, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"idle"`)

	w = call(r, http.MethodPost, target, "doctor1", models.RoleDoctor, "")
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"pending"`)
	assert.Equal(t, RenderPrompt("Patient: Liam Carter"), <-gen.calls)

	w = call(r, http.MethodPost, target, "doctor1", models.RoleDoctor, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	gen.release <- `{"summary":"Stable hypertension."}`
	assert.Eventually(t, func() bool {
		w := call(r, http.MethodGet, target, "doctor1", models.RoleDoctor, "")
		var state State
		_ = json.Unmarshal(w.Body.Bytes(), &state)
		return state.Status == StatusSucceeded && state.Summary == "Stable hypertension."
	}, 2*time.Second, 10*time.Millisecond)

	w = call(r, http.MethodDelete, target, "doctor1", models.RoleDoctor, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = call(r, http.MethodGet, target, "doctor1", models.RoleDoctor, "")
	assert.Contains(t, w.Body.String(), `"status":"idle"`)
}

func TestStartWithoutRecord(t *testing.T) {
	_, r := newTestHandler(newBlockingGenerator())
	w := call(r, http.MethodPost, "/api/v1/patients/patient9/summary", "doctor1", models.RoleDoctor, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStreamWithoutRecord(t *testing.T) {
	h, r := newTestHandler(newBlockingGenerator())
	w := call(r, http.MethodGet, "/api/v1/patients/patient9/summary/stream", "doctor1", models.RoleDoctor, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Zero(t, h.registry.Len())
}

func TestStartAfterSurfaceClosedUnderneath(t *testing.T) {
	gen := newBlockingGenerator()
	h, r := newTestHandler(gen)
	h.registry.GetOrCreate(SurfaceKey("doctor1", "patient1")).Close()

	w := call(r, http.MethodPost, "/api/v1/patients/patient1/summary", "doctor1", models.RoleDoctor, "")
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"pending"`)
	<-gen.calls
	h.registry.CloseAll()
}

func TestStreamEndsWhenSurfaceCloses(t *testing.T) {
	h, r := newTestHandler(newBlockingGenerator())
	srv := httptest.NewServer(r)
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/patients/patient1/summary/stream", nil)
	require.NoError(t, err)
	req.Header.Set("X-User", "doctor1")
	req.Header.Set("X-Role", string(models.RoleDoctor))
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event:state\n", line)
	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, line, `"status":"idle"`)

	h.registry.Remove(SurfaceKey("doctor1", "patient1"))
	_, err = io.ReadAll(reader)
	assert.NoError(t, err)
}
