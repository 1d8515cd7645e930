package formanalysis_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/swanstudios/formsight/internal/formanalysis"
	"github.com/swanstudios/formsight/internal/sessions"
	"github.com/swanstudios/formsight/internal/telemetry/metrics"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type handlerTestTools struct {
	router  *mux.Router
	service *MocklifecycleService
	model   *MockmodelState
	store   *sessions.Store
}

func newHandlerTestTools(t *testing.T) *handlerTestTools {
	t.Helper()
	ctrl := gomock.NewController(t)
	service := NewMocklifecycleService(ctrl)
	model := NewMockmodelState(ctrl)
	store := sessions.NewStore(sessions.StoreParams{
		MaxSessions:    10,
		MaxPoseHistory: 30,
		MetricsManager: metrics.NewTestManager(),
	})

	router := mux.NewRouter()
	handler := formanalysis.NewHandler(service, store, model)
	handler.SetupRoutes(router)

	return &handlerTestTools{
		router:  router,
		service: service,
		model:   model,
		store:   store,
	}
}

func (tools *handlerTestTools) post(t *testing.T, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req, err := http.NewRequest("POST", path, bytes.NewReader(body))
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	tools.router.ServeHTTP(rec, req)
	return rec
}

func (tools *handlerTestTools) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest("GET", path, nil)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	tools.router.ServeHTTP(rec, req)
	return rec
}

func TestHandler_HandleStart(t *testing.T) {
	tools := newHandlerTestTools(t)

	tools.service.EXPECT().
		Start(gomock.Any(), formanalysis.StartRequest{UserID: "u1", ExerciseName: "squat"}).
		Return(&formanalysis.StartResponse{
			SessionID: "sess-1",
			Success:   true,
			Message:   "Form analysis session started",
			Data: &formanalysis.StartData{
				WebsocketPath: "/ws/form-analysis/sess-1",
				ExerciseName:  "squat",
			},
		}, nil)

	rec := tools.post(t, "/tools/StartFormAnalysis", map[string]string{
		"userId":       "u1",
		"exerciseName": "squat",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp formanalysis.StartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "sess-1", resp.SessionID)
	require.NotNil(t, resp.Data)
	assert.Equal(t, "/ws/form-analysis/sess-1", resp.Data.WebsocketPath)
}

func TestHandler_HandleStart_MissingUserID(t *testing.T) {
	tools := newHandlerTestTools(t)

	rec := tools.post(t, "/tools/StartFormAnalysis", map[string]string{
		"exerciseName": "squat",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp formanalysis.StartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "userId is required", resp.Message)
}

func TestHandler_HandleStart_ModelUnavailable(t *testing.T) {
	tools := newHandlerTestTools(t)

	tools.service.EXPECT().
		Start(gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("%w: warmup timeout", formanalysis.ErrModelUnavailable))

	rec := tools.post(t, "/tools/StartFormAnalysis", map[string]string{"userId": "u1"})

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp formanalysis.StartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
}

func TestHandler_HandleStop(t *testing.T) {
	tools := newHandlerTestTools(t)

	tools.service.EXPECT().
		Stop(gomock.Any(), "sess-1").
		Return(&formanalysis.StopResponse{
			SessionID: "sess-1",
			Success:   true,
			Message:   "Form analysis session stopped",
			Data: &formanalysis.SessionSummary{
				TotalFrames:      42,
				DurationSeconds:  12.5,
				AverageFormScore: 88.5,
			},
		})

	rec := tools.post(t, "/tools/StopFormAnalysis", map[string]string{"sessionId": "sess-1"})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp formanalysis.StopResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Data)
	assert.Equal(t, 42, resp.Data.TotalFrames)
}

func TestHandler_HandleStop_MissingSessionID(t *testing.T) {
	tools := newHandlerTestTools(t)

	rec := tools.post(t, "/tools/StopFormAnalysis", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_HandleFeedback(t *testing.T) {
	tools := newHandlerTestTools(t)

	tools.service.EXPECT().
		GetRealTimeFeedback(gomock.Any(), "sess-1").
		Return(&formanalysis.FeedbackResponse{
			SessionID: "sess-1",
			Success:   false,
			Message:   "Session is not active",
		})

	rec := tools.post(t, "/tools/GetRealTimeFeedback", map[string]string{"sessionId": "sess-1"})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp formanalysis.FeedbackResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Session is not active", resp.Message)
}

func TestHandler_HandleHealth(t *testing.T) {
	tools := newHandlerTestTools(t)
	tools.model.EXPECT().Loaded().Return(true)
	tools.store.CreateSession("u1", "", "squat")

	rec := tools.get(t, "/health")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, "loaded", resp["modelStatus"])
	assert.Equal(t, 1.0, resp["activeSessions"])
}

func TestHandler_HandleListTools(t *testing.T) {
	tools := newHandlerTestTools(t)

	rec := tools.get(t, "/tools")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "start_form_analysis")
	assert.Contains(t, rec.Body.String(), "stop_form_analysis")
	assert.Contains(t, rec.Body.String(), "get_realtime_feedback")
}

func TestHandler_HandleRoot(t *testing.T) {
	tools := newHandlerTestTools(t)
	tools.model.EXPECT().Loaded().Return(false)

	rec := tools.get(t, "/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "formsight")
	assert.Contains(t, rec.Body.String(), "not_loaded")
}
