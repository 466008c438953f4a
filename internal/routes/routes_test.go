package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stridelog/stridelog/internal/app"
	"github.com/stridelog/stridelog/internal/config"
	"github.com/stridelog/stridelog/internal/db"
	"github.com/stridelog/stridelog/internal/repository"
	"github.com/stridelog/stridelog/internal/service"
)

const testSecret = "test-secret"

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	dsn := "file:" + uuid.New().String() + "?mode=memory&cache=shared"
	database, err := db.Init("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, db.RunMigrations(database.DB, "sqlite"))

	repo := repository.NewGoalRepository(database)
	a := &app.App{
		Cfg: &config.Config{
			JWTSecret:   testSecret,
			CORSOrigins: []string{"*"},
		},
		DB:          database,
		GoalService: service.NewGoalService(repo),
		Analytics:   service.NewAnalyticsAggregator(repo),
	}

	return SetupRoutes(a)
}

func token(t *testing.T, sub, role string) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	if role != "" {
		claims["role"] = role
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func doJSON(t *testing.T, h http.Handler, method, path, bearer string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&decoded))
	}
	return rec, decoded
}

func goalBody() map[string]any {
	return map[string]any{
		"title":      "Lose weight",
		"type":       "weight",
		"target":     10,
		"unit":       "lbs",
		"targetDate": time.Now().AddDate(0, 0, 30).Format(time.RFC3339),
	}
}

func TestHealthIsPublic(t *testing.T) {
	h := newTestHandler(t)

	rec, body := doJSON(t, h, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", body["status"])
}

func TestMissingTokenIsRejected(t *testing.T) {
	h := newTestHandler(t)

	rec, body := doJSON(t, h, http.MethodGet, "/goals", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "error", body["status"])
}

func TestCreateAndProgressFlow(t *testing.T) {
	h := newTestHandler(t)
	bearer := token(t, "u1", "")

	rec, body := doJSON(t, h, http.MethodPost, "/goals", bearer, goalBody())
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "success", body["status"])

	data := body["data"].(map[string]any)
	goalID := data["id"].(string)
	assert.Equal(t, "active", data["status"])
	assert.Equal(t, 0.0, data["progressPercentage"])

	rec, body = doJSON(t, h, http.MethodPost, "/goals/"+goalID+"/progress", bearer, map[string]any{"value": 4})
	require.Equal(t, http.StatusOK, rec.Code)
	data = body["data"].(map[string]any)
	assert.Equal(t, "active", data["status"])
	assert.Equal(t, 40.0, data["progressPercentage"])

	rec, body = doJSON(t, h, http.MethodPost, "/goals/"+goalID+"/progress", bearer, map[string]any{"value": 10})
	require.Equal(t, http.StatusOK, rec.Code)
	data = body["data"].(map[string]any)
	assert.Equal(t, "completed", data["status"])
	assert.Equal(t, 100.0, data["progressPercentage"])

	rec, body = doJSON(t, h, http.MethodPost, "/goals/"+goalID+"/progress", bearer, map[string]any{"value": 12})
	require.Equal(t, http.StatusOK, rec.Code)
	data = body["data"].(map[string]any)
	assert.Equal(t, "completed", data["status"])
	assert.Equal(t, 100.0, data["progressPercentage"])
	assert.Equal(t, 12.0, data["current"])
}

func TestCreateValidationDetail(t *testing.T) {
	h := newTestHandler(t)
	bearer := token(t, "u1", "")

	rec, body := doJSON(t, h, http.MethodPost, "/goals", bearer, map[string]any{"type": "cardio"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "error", body["status"])
	assert.NotEmpty(t, body["errors"])
}

func TestOwnershipReturnsNotFound(t *testing.T) {
	h := newTestHandler(t)

	_, body := doJSON(t, h, http.MethodPost, "/goals", token(t, "u1", ""), goalBody())
	goalID := body["data"].(map[string]any)["id"].(string)

	intruder := token(t, "u2", "")
	rec, _ := doJSON(t, h, http.MethodGet, "/goals/"+goalID, intruder, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = doJSON(t, h, http.MethodDelete, "/goals/"+goalID, intruder, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = doJSON(t, h, http.MethodPost, "/goals/"+goalID+"/progress", intruder, map[string]any{"value": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListFilterAndTotal(t *testing.T) {
	h := newTestHandler(t)
	bearer := token(t, "u1", "")

	for i := 0; i < 15; i++ {
		rec, _ := doJSON(t, h, http.MethodPost, "/goals", bearer, goalBody())
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	for i := 0; i < 5; i++ {
		rec, body := doJSON(t, h, http.MethodPost, "/goals", bearer, goalBody())
		require.Equal(t, http.StatusCreated, rec.Code)
		goalID := body["data"].(map[string]any)["id"].(string)
		rec, _ = doJSON(t, h, http.MethodPost, "/goals/"+goalID+"/progress", bearer, map[string]any{"value": 10})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec, body := doJSON(t, h, http.MethodGet, "/goals?status=active&page=1&limit=10", bearer, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data := body["data"].(map[string]any)
	assert.Equal(t, 15.0, data["total"])
	assert.Len(t, data["items"].([]any), 10)

	rec, _ = doJSON(t, h, http.MethodGet, "/goals?status=archived", bearer, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSummaryEndpoint(t *testing.T) {
	h := newTestHandler(t)
	bearer := token(t, "u1", "")

	_, body := doJSON(t, h, http.MethodPost, "/goals", bearer, goalBody())
	goalID := body["data"].(map[string]any)["id"].(string)
	doJSON(t, h, http.MethodPost, "/goals/"+goalID+"/progress", bearer, map[string]any{"value": 5})

	rec, body := doJSON(t, h, http.MethodGet, "/summary", bearer, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data := body["data"].(map[string]any)
	assert.Equal(t, 1.0, data["totalGoals"])
	assert.Equal(t, 1.0, data["active"])
	assert.Equal(t, 50.0, data["averageProgress"])
}

func TestAnalyticsRequiresAdminRole(t *testing.T) {
	h := newTestHandler(t)

	rec, _ := doJSON(t, h, http.MethodGet, "/admin/analytics", token(t, "u1", ""), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	admin := token(t, "ops", "admin")
	_, body := doJSON(t, h, http.MethodPost, "/goals", token(t, "u1", ""), goalBody())
	require.Equal(t, "success", body["status"])

	rec, body = doJSON(t, h, http.MethodGet, "/admin/analytics?granularity=day", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data := body["data"].(map[string]any)
	assert.Equal(t, 1.0, data["totalGoals"])
	assert.Equal(t, 0.0, data["completionRate"])
	require.Len(t, data["categories"].([]any), 1)
}
