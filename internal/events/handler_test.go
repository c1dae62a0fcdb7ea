package events_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/reindeer-games/backend/internal/events"
	"github.com/reindeer-games/backend/internal/middleware"
	"github.com/reindeer-games/backend/internal/models"
	"github.com/reindeer-games/backend/pkg/response"
)

func newRouter(repo events.Repository, session *models.Session) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := events.NewHandler(events.NewService(repo, nil, nil), nil)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if session != nil {
			c.Set(middleware.ContextSession, session)
		}
		c.Next()
	})
	r.GET("/events", handler.List)
	r.POST("/events", handler.Create)
	r.DELETE("/events/:id", handler.Delete)
	return r
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) response.Body {
	t.Helper()
	var body response.Body
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestListEndpointSignedOut(t *testing.T) {
	repo := new(MockRepository)
	r := newRouter(repo, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.True(t, body.Success)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)
}

func TestCreateEndpointRequiresBothFields(t *testing.T) {
	repo := new(MockRepository)
	r := newRouter(repo, sessionFor("user-u"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/events",
		bytes.NewBufferString(`{"name":"Ski Trip"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Name and description are required")
}

func TestCreateEndpointSignedOut(t *testing.T) {
	repo := new(MockRepository)
	r := newRouter(repo, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/events",
		bytes.NewBufferString(`{"name":"Ski Trip","description":"Weekend"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "You must be logged in to create events")
}

func TestCreateEndpointSuccess(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Insert", mock.Anything, "user-u", "Ski Trip", "Weekend").
		Return(&models.Event{ID: uuid.New(), UserID: "user-u", Name: "Ski Trip", Description: "Weekend"}, nil)
	r := newRouter(repo, sessionFor("user-u"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/events",
		bytes.NewBufferString(`{"name":"Ski Trip","description":"Weekend"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Ski Trip"`)
}

func TestDeleteEndpointForbidden(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetOwner", mock.Anything, "event-1").Return("user-a", nil)
	r := newRouter(repo, sessionFor("user-b"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/events/event-1", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "You can only delete your own events")
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteEndpointSuccess(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetOwner", mock.Anything, "event-1").Return("user-a", nil)
	repo.On("Delete", mock.Anything, "event-1", "user-a").Return(nil)
	r := newRouter(repo, sessionFor("user-a"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/events/event-1", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
}
