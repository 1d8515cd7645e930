package formanalysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/swanstudios/formsight/internal/pose"
	"github.com/swanstudios/formsight/internal/sessions"
	"github.com/swanstudios/formsight/internal/telemetry/metrics"
	"github.com/swanstudios/formsight/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// ErrModelUnavailable is returned from Start when the shared pose model
// cannot be loaded. Callers turn it into a structured failure envelope.
var ErrModelUnavailable = errors.New("pose model unavailable")

type StartRequest struct {
	UserID           string         `json:"userId"`
	ExerciseID       string         `json:"exerciseId,omitempty"`
	ExerciseName     string         `json:"exerciseName,omitempty"`
	CameraConfig     map[string]any `json:"cameraConfig,omitempty"`
	AnalysisSettings map[string]any `json:"analysisSettings,omitempty"`
}

type StartData struct {
	WebsocketPath string `json:"websocketPath"`
	ExerciseName  string `json:"exerciseName,omitempty"`
}

type StartResponse struct {
	SessionID string     `json:"sessionId,omitempty"`
	Success   bool       `json:"success"`
	Message   string     `json:"message"`
	Data      *StartData `json:"data,omitempty"`
}

type SessionSummary struct {
	TotalFrames      int      `json:"totalFrames"`
	DurationSeconds  float64  `json:"durationSeconds"`
	AverageFormScore float64  `json:"averageFormScore"`
	FinalMetrics     *Metrics `json:"finalMetrics,omitempty"`
}

type StopResponse struct {
	SessionID string          `json:"sessionId"`
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Data      *SessionSummary `json:"data,omitempty"`
}

type FrameInfo struct {
	FrameCount    int       `json:"frameCount"`
	TotalFrames   int       `json:"totalFrames"`
	FPS           float64   `json:"fps"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

type FeedbackResponse struct {
	SessionID      string            `json:"sessionId"`
	CurrentMetrics *Metrics          `json:"currentMetrics,omitempty"`
	PoseData       *pose.Observation `json:"poseData,omitempty"`
	FrameInfo      *FrameInfo        `json:"frameInfo,omitempty"`
	Success        bool              `json:"success"`
	Message        string            `json:"message"`
}

// Service implements the session lifecycle operations. It is shared by the
// HTTP handler, the MCP tools and the streaming controller.
type Service struct {
	store          *sessions.Store
	model          pose.Model
	metricsManager *metrics.Manager
}

func NewService(store *sessions.Store, model pose.Model, metricsManager *metrics.Manager) *Service {
	return &Service{
		store:          store,
		model:          model,
		metricsManager: metricsManager,
	}
}

func (s *Service) Store() *sessions.Store {
	return s.store
}

// Start makes sure the shared pose model is loaded, then registers a new
// session. Model load is idempotent, so the common case is a cheap no-op.
func (s *Service) Start(ctx context.Context, req StartRequest) (*StartResponse, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "formanalysis.start")
	defer span.End()

	if err := s.model.Load(ctx); err != nil {
		if s.metricsManager != nil {
			s.metricsManager.GaugeModelLoaded.Set(0)
		}
		return nil, fmt.Errorf("%w: %s", ErrModelUnavailable, err)
	}
	if s.metricsManager != nil {
		s.metricsManager.GaugeModelLoaded.Set(1)
	}

	session := s.store.CreateSession(req.UserID, req.ExerciseID, req.ExerciseName)
	span.SetAttributes(attribute.String("session.id", session.ID))
	log.Debugf(
		"started analysis session [%s] for user [%s], exercise [%s]",
		session.ID, req.UserID, req.ExerciseName,
	)

	return &StartResponse{
		SessionID: session.ID,
		Success:   true,
		Message:   "Form analysis session started",
		Data: &StartData{
			WebsocketPath: "/ws/form-analysis/" + session.ID,
			ExerciseName:  req.ExerciseName,
		},
	}, nil
}

// Stop deactivates the session and returns its summary. Unknown ids produce
// a success=false envelope, not an error.
func (s *Service) Stop(ctx context.Context, sessionID string) *StopResponse {
	_, span := tracing.GlobalTracer.Start(ctx, "formanalysis.stop")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", sessionID))

	session, found := s.store.StopSession(sessionID)
	if !found {
		return &StopResponse{
			SessionID: sessionID,
			Success:   false,
			Message:   "Session not found",
		}
	}

	return &StopResponse{
		SessionID: sessionID,
		Success:   true,
		Message:   "Form analysis session stopped",
		Data: &SessionSummary{
			TotalFrames:      session.TotalFrames,
			DurationSeconds:  session.Duration(time.Now()).Seconds(),
			AverageFormScore: session.LastFormScore(),
			FinalMetrics:     session.LatestMetrics,
		},
	}
}

// GetRealTimeFeedback returns the latest computed metrics and frame-rate info
// for an active session without touching the stream.
func (s *Service) GetRealTimeFeedback(ctx context.Context, sessionID string) *FeedbackResponse {
	_, span := tracing.GlobalTracer.Start(ctx, "formanalysis.feedback")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", sessionID))

	session, found := s.store.GetSession(sessionID)
	if !found {
		return &FeedbackResponse{
			SessionID: sessionID,
			Success:   false,
			Message:   "Session not found",
		}
	}
	if !session.Active {
		return &FeedbackResponse{
			SessionID: sessionID,
			Success:   false,
			Message:   "Session is not active",
		}
	}

	elapsed := time.Since(session.StartedAt).Seconds()
	var fps float64
	if elapsed > 0 {
		fps = float64(session.FrameCount) / elapsed
	}

	return &FeedbackResponse{
		SessionID:      sessionID,
		CurrentMetrics: session.LatestMetrics,
		PoseData:       session.CurrentPose,
		FrameInfo: &FrameInfo{
			FrameCount:    session.FrameCount,
			TotalFrames:   session.TotalFrames,
			FPS:           fps,
			LastUpdatedAt: session.LastUpdatedAt,
		},
		Success: true,
		Message: "ok",
	}
}

// Shutdown stops every tracked session. Called on graceful service shutdown.
func (s *Service) Shutdown() {
	s.store.StopAll()
	log.Debugln("all analysis sessions stopped")
}
