package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mshibata/studyledger/internal/analytics"
	"github.com/mshibata/studyledger/internal/goal"
	"github.com/mshibata/studyledger/internal/task"
)

type fakeTaskService struct {
	createFunc   func(ctx context.Context, userID string, params task.CreateParams) (*task.Task, error)
	getFunc      func(ctx context.Context, userID, id string) (*task.Task, error)
	listFunc     func(ctx context.Context, userID string, day time.Time) (*task.DaySummary, error)
	updateFunc   func(ctx context.Context, userID, id string, params task.UpdateParams) (*task.Task, error)
	deleteFunc   func(ctx context.Context, userID, id string) error
	completeFunc func(ctx context.Context, userID, id string, params task.CompleteParams) (*task.CompletionResult, error)
}

func (f *fakeTaskService) Create(ctx context.Context, userID string, params task.CreateParams) (*task.Task, error) {
	return f.createFunc(ctx, userID, params)
}

func (f *fakeTaskService) Get(ctx context.Context, userID, id string) (*task.Task, error) {
	return f.getFunc(ctx, userID, id)
}

func (f *fakeTaskService) ListForDay(ctx context.Context, userID string, day time.Time) (*task.DaySummary, error) {
	return f.listFunc(ctx, userID, day)
}

func (f *fakeTaskService) Update(ctx context.Context, userID, id string, params task.UpdateParams) (*task.Task, error) {
	return f.updateFunc(ctx, userID, id, params)
}

func (f *fakeTaskService) Delete(ctx context.Context, userID, id string) error {
	return f.deleteFunc(ctx, userID, id)
}

func (f *fakeTaskService) Complete(ctx context.Context, userID, id string, params task.CompleteParams) (*task.CompletionResult, error) {
	return f.completeFunc(ctx, userID, id, params)
}

type fakeGoalService struct {
	createFunc          func(ctx context.Context, userID string, params goal.CreateParams) (*goal.Goal, error)
	getFunc             func(ctx context.Context, userID, id string) (*goal.Goal, error)
	listFunc            func(ctx context.Context, userID string, status goal.Status, limit, offset int) ([]goal.Goal, error)
	updateFunc          func(ctx context.Context, userID, id string, params goal.UpdateParams) (*goal.Goal, error)
	deleteFunc          func(ctx context.Context, userID, id string) error
	toggleMilestoneFunc func(ctx context.Context, userID, id string, index int, completed bool) (*goal.Goal, error)
	addProgressLogFunc  func(ctx context.Context, userID, id string, params goal.ProgressLogParams) (*goal.Goal, error)
}

func (f *fakeGoalService) Create(ctx context.Context, userID string, params goal.CreateParams) (*goal.Goal, error) {
	return f.createFunc(ctx, userID, params)
}

func (f *fakeGoalService) Get(ctx context.Context, userID, id string) (*goal.Goal, error) {
	return f.getFunc(ctx, userID, id)
}

func (f *fakeGoalService) List(ctx context.Context, userID string, status goal.Status, limit, offset int) ([]goal.Goal, error) {
	return f.listFunc(ctx, userID, status, limit, offset)
}

func (f *fakeGoalService) Update(ctx context.Context, userID, id string, params goal.UpdateParams) (*goal.Goal, error) {
	return f.updateFunc(ctx, userID, id, params)
}

func (f *fakeGoalService) Delete(ctx context.Context, userID, id string) error {
	return f.deleteFunc(ctx, userID, id)
}

func (f *fakeGoalService) ToggleMilestone(ctx context.Context, userID, id string, index int, completed bool) (*goal.Goal, error) {
	return f.toggleMilestoneFunc(ctx, userID, id, index, completed)
}

func (f *fakeGoalService) AddProgressLog(ctx context.Context, userID, id string, params goal.ProgressLogParams) (*goal.Goal, error) {
	return f.addProgressLogFunc(ctx, userID, id, params)
}

type fakeAnalyticsService struct {
	getReportFunc func(ctx context.Context, userID string, timeRange analytics.TimeRange) (*analytics.Report, error)
}

func (f *fakeAnalyticsService) GetReport(ctx context.Context, userID string, timeRange analytics.TimeRange) (*analytics.Report, error) {
	return f.getReportFunc(ctx, userID, timeRange)
}

func newTestHandler(t *testing.T, tasks TaskService, goals GoalService, analyticsService AnalyticsService) http.Handler {
	t.Helper()
	handler, err := New(tasks, goals, nil, nil, analyticsService)
	require.NoError(t, err)
	return AuthMiddleware(handler.Routes())
}

func doRequest(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(UserIDHeader, "user-1")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}
