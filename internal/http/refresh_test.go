package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/aroundegypt/internal/entities"
)

type stubTrigger struct {
	id      string
	err     error
	reasons []string
}

func (s *stubTrigger) EnqueueRefresh(reason string) (string, error) {
	s.reasons = append(s.reasons, reason)
	return s.id, s.err
}

type stubSettings map[string]string

func (s stubSettings) GetValue(ctx context.Context, key string) (string, error) {
	return s[key], nil
}

type stubTaskStatus struct {
	status backlite.TaskStatus
	err    error
}

func (s stubTaskStatus) Status(ctx context.Context, taskID string) (backlite.TaskStatus, error) {
	return s.status, s.err
}

func serve(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestRefreshController_Run(t *testing.T) {
	trigger := &stubTrigger{id: "task-42"}
	router := NewRouter(RouterConfig{Refresh: trigger})

	w := serve(router, "POST", "/api/refresh")
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), "task-42")
	assert.Equal(t, []string{"manual"}, trigger.reasons)
}

func TestRefreshController_AlreadyRunning(t *testing.T) {
	router := NewRouter(RouterConfig{Refresh: &stubTrigger{}})

	w := serve(router, "POST", "/api/refresh")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "already running")
}

func TestRefreshController_EnqueueError(t *testing.T) {
	router := NewRouter(RouterConfig{Refresh: &stubTrigger{err: errors.New("queue closed")}})

	w := serve(router, "POST", "/api/refresh")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "queue closed")
}

func TestRefreshController_Status(t *testing.T) {
	router := NewRouter(RouterConfig{
		Refresh: &stubTrigger{},
		Settings: stubSettings{
			entities.SettingKeyRefreshLastAt:     "2026-10-19T08:00:00Z",
			entities.SettingKeyRefreshLastStatus: "success",
		},
	})

	w := serve(router, "GET", "/api/refresh")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"last_at":"2026-10-19T08:00:00Z","last_status":"success"}`, w.Body.String())
}

func TestTasksController_GetTaskStatus(t *testing.T) {
	router := NewRouter(RouterConfig{TaskClient: stubTaskStatus{status: backlite.TaskStatusSuccess}})
	w := serve(router, "GET", "/api/tasks/abc")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"abc","status":"success"}`, w.Body.String())

	router = NewRouter(RouterConfig{TaskClient: stubTaskStatus{status: backlite.TaskStatusNotFound}})
	w = serve(router, "GET", "/api/tasks/abc")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTaskStatusToString(t *testing.T) {
	assert.Equal(t, "pending", taskStatusToString(backlite.TaskStatusPending))
	assert.Equal(t, "running", taskStatusToString(backlite.TaskStatusRunning))
	assert.Equal(t, "failure", taskStatusToString(backlite.TaskStatusFailure))
}
