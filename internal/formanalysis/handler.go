package formanalysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/swanstudios/formsight/internal/sessions"
	"github.com/swanstudios/formsight/internal/telemetry/tracing"
	"github.com/swanstudios/formsight/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=formanalysis_test

type lifecycleService interface {
	Start(ctx context.Context, req StartRequest) (*StartResponse, error)
	Stop(ctx context.Context, sessionID string) *StopResponse
	GetRealTimeFeedback(ctx context.Context, sessionID string) *FeedbackResponse
}

type modelState interface {
	Loaded() bool
}

type stopRequest struct {
	SessionID string `json:"sessionId"`
}

type feedbackRequest struct {
	SessionID string `json:"sessionId"`
}

type healthResponse struct {
	Status         string    `json:"status"`
	ModelStatus    string    `json:"modelStatus"`
	ActiveSessions int       `json:"activeSessions"`
	Timestamp      time.Time `json:"timestamp"`
}

type toolInfo struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Input       map[string]string `json:"input"`
}

type Handler struct {
	service lifecycleService
	store   *sessions.Store
	model   modelState
}

func NewHandler(service lifecycleService, store *sessions.Store, model modelState) *Handler {
	return &Handler{
		service: service,
		store:   store,
		model:   model,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/tools/StartFormAnalysis", handler.HandleStart).Methods("POST", "OPTIONS").Name("start-form-analysis")
	router.HandleFunc("/tools/StopFormAnalysis", handler.HandleStop).Methods("POST", "OPTIONS").Name("stop-form-analysis")
	router.HandleFunc("/tools/GetRealTimeFeedback", handler.HandleFeedback).Methods("POST", "OPTIONS").Name("realtime-feedback")
	router.HandleFunc("/tools", handler.HandleListTools).Methods("GET").Name("list-tools")
	router.HandleFunc("/health", handler.HandleHealth).Methods("GET").Name("health")
	router.HandleFunc("/", handler.HandleRoot).Methods("GET").Name("root")
}

func (handler *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.formanalysis.start")
	defer span.End()

	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("start form analysis, unmarshal json params: %s", err)
		handler.writeEnvelope(w, http.StatusBadRequest, StartResponse{
			Success: false,
			Message: "invalid request payload",
		})
		return
	}

	if req.UserID == "" {
		handler.writeEnvelope(w, http.StatusBadRequest, StartResponse{
			Success: false,
			Message: "userId is required",
		})
		return
	}

	resp, err := handler.service.Start(ctx, req)
	if err != nil {
		if errors.Is(err, ErrModelUnavailable) {
			log.Errorf("start form analysis: %s", err)
			handler.writeEnvelope(w, http.StatusServiceUnavailable, StartResponse{
				Success: false,
				Message: "pose model unavailable",
			})
			return
		}
		log.Errorf("start form analysis: %s", err)
		handler.writeEnvelope(w, http.StatusInternalServerError, StartResponse{
			Success: false,
			Message: "internal server error",
		})
		return
	}

	handler.writeEnvelope(w, http.StatusOK, resp)
}

func (handler *Handler) HandleStop(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.formanalysis.stop")
	defer span.End()

	var req stopRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
		handler.writeEnvelope(w, http.StatusBadRequest, StopResponse{
			Success: false,
			Message: "sessionId is required",
		})
		return
	}

	handler.writeEnvelope(w, http.StatusOK, handler.service.Stop(ctx, req.SessionID))
}

func (handler *Handler) HandleFeedback(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.formanalysis.feedback")
	defer span.End()

	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
		handler.writeEnvelope(w, http.StatusBadRequest, FeedbackResponse{
			Success: false,
			Message: "sessionId is required",
		})
		return
	}

	handler.writeEnvelope(w, http.StatusOK, handler.service.GetRealTimeFeedback(ctx, req.SessionID))
}

func (handler *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	modelStatus := "not_loaded"
	if handler.model.Loaded() {
		modelStatus = "loaded"
	}

	handler.writeEnvelope(w, http.StatusOK, healthResponse{
		Status:         "healthy",
		ModelStatus:    modelStatus,
		ActiveSessions: handler.store.ActiveCount(),
		Timestamp:      time.Now(),
	})
}

func (handler *Handler) HandleListTools(w http.ResponseWriter, r *http.Request) {
	tools := []toolInfo{
		{
			Name:        "start_form_analysis",
			Description: "Start a real-time exercise form analysis session",
			Input: map[string]string{
				"userId":       "string, required",
				"exerciseId":   "string, optional",
				"exerciseName": "string, optional (squat, deadlift, bench_press, overhead_press, plank)",
			},
		},
		{
			Name:        "stop_form_analysis",
			Description: "Stop an analysis session and get its summary",
			Input: map[string]string{
				"sessionId": "string, required",
			},
		},
		{
			Name:        "get_realtime_feedback",
			Description: "Fetch the latest computed metrics for an active session",
			Input: map[string]string{
				"sessionId": "string, required",
			},
		},
	}

	handler.writeEnvelope(w, http.StatusOK, map[string]any{"tools": tools})
}

func (handler *Handler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	modelStatus := "not_loaded"
	if handler.model.Loaded() {
		modelStatus = "loaded"
	}

	handler.writeEnvelope(w, http.StatusOK, map[string]any{
		"service":     "formsight",
		"description": "real-time exercise form analysis",
		"modelStatus": modelStatus,
		"endpoints": map[string]string{
			"start":    "POST /tools/StartFormAnalysis",
			"stop":     "POST /tools/StopFormAnalysis",
			"feedback": "POST /tools/GetRealTimeFeedback",
			"tools":    "GET /tools",
			"stream":   "GET /ws/form-analysis/{sessionId}",
			"health":   "GET /health",
		},
	})
}

func (handler *Handler) writeEnvelope(w http.ResponseWriter, status int, payload any) {
	b, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("marshal response envelope: %s", err)
		http.Error(w, fmt.Sprintf("marshal response: %s", err), http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, b, status)
}
