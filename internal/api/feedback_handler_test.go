package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labelwise/labelwise-api/internal/domain"
	"github.com/labelwise/labelwise-api/internal/service"
)

func feedbackRequest(t *testing.T, projectID, taskID, payload string) *http.Request {
	t.Helper()

	req := httptest.NewRequest(
		http.MethodPost,
		"/projects/"+projectID+"/tasks/"+taskID+"/feedback",
		bytes.NewBufferString(payload),
	)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", projectID)
	rctx.URLParams.Add("taskID", taskID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestSubmitFeedback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		payload    string
		submitFn   func(ctx context.Context, feedback *domain.ClientFeedback) (*domain.Task, error)
		wantStatus int
		wantFinal  string
	}{
		{
			name:    "approve settles the task",
			payload: `{"action":"approve","client_name":"Globex"}`,
			submitFn: func(ctx context.Context, feedback *domain.ClientFeedback) (*domain.Task, error) {
				assert.Equal(t, int64(1), feedback.ProjectID)
				assert.Equal(t, int64(9), feedback.TaskID)
				assert.Equal(t, domain.FeedbackActionApprove, feedback.Action)

				task := inReviewTask()
				task.Status = domain.TaskStatusClientApproved
				return task, nil
			},
			wantStatus: http.StatusOK,
			wantFinal:  "client_approved",
		},
		{
			name:    "reject settles the task",
			payload: `{"action":"reject","comment":"missed the org mention"}`,
			submitFn: func(ctx context.Context, feedback *domain.ClientFeedback) (*domain.Task, error) {
				assert.Equal(t, "missed the org mention", feedback.Comment)

				task := inReviewTask()
				task.Status = domain.TaskStatusClientRejected
				return task, nil
			},
			wantStatus: http.StatusOK,
			wantFinal:  "client_rejected",
		},
		{
			name:       "unknown action",
			payload:    `{"action":"escalate"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing action",
			payload:    `{"comment":"looks fine"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:    "task not reviewed yet",
			payload: `{"action":"approve"}`,
			submitFn: func(ctx context.Context, feedback *domain.ClientFeedback) (*domain.Task, error) {
				return nil, service.ErrWrongTaskState
			},
			wantStatus: http.StatusConflict,
		},
		{
			name:    "task belongs to another project",
			payload: `{"action":"approve"}`,
			submitFn: func(ctx context.Context, feedback *domain.ClientFeedback) (*domain.Task, error) {
				return nil, service.ErrTaskNotFound
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feedbackService := &mockFeedbackService{submitFeedbackFn: tt.submitFn}
			handler := NewFeedbackHandler(feedbackService, newTestLogger(t))

			req := feedbackRequest(t, "1", "9", tt.payload)
			recorder := httptest.NewRecorder()

			handler.SubmitFeedback(recorder, req)

			assert.Equal(t, tt.wantStatus, recorder.Code)

			if tt.wantStatus == http.StatusOK {
				var resp TaskResponse
				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
				assert.Equal(t, tt.wantFinal, resp.Status)
			}
		})
	}
}

func TestSubmitFeedbackInvalidPath(t *testing.T) {
	t.Parallel()

	handler := NewFeedbackHandler(&mockFeedbackService{}, newTestLogger(t))

	req := feedbackRequest(t, "1", "not-a-number", `{"action":"approve"}`)
	recorder := httptest.NewRecorder()

	handler.SubmitFeedback(recorder, req)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
