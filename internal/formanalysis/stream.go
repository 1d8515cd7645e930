package formanalysis

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/swanstudios/formsight/internal/pose"
	"github.com/swanstudios/formsight/internal/sessions"
	"github.com/swanstudios/formsight/internal/telemetry/metrics"
	"github.com/swanstudios/formsight/internal/telemetry/tracing"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	messageTypeFrame    = "frame"
	messageTypePing     = "ping"
	messageTypeAnalysis = "analysis"
	messageTypePong     = "pong"
	messageTypeError    = "error"
)

type clientMessage struct {
	Type             string `json:"type"`
	Data             string `json:"data,omitempty"`
	IncludeAnnotated bool   `json:"includeAnnotated,omitempty"`
}

type analysisMessage struct {
	Type           string    `json:"type"`
	SessionID      string    `json:"sessionId"`
	Timestamp      time.Time `json:"timestamp"`
	PoseDetected   bool      `json:"poseDetected"`
	Metrics        *Metrics  `json:"metrics,omitempty"`
	AnnotatedFrame string    `json:"annotatedFrame,omitempty"`
}

type pongMessage struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// StreamHandler runs the per-connection streaming loop: one goroutine per
// upgraded connection, frames processed strictly in arrival order, and the
// session unconditionally stopped on every exit path.
type StreamHandler struct {
	store          *sessions.Store
	extractor      *pose.Extractor
	analyzer       *Analyzer
	metricsManager *metrics.Manager
	upgrader       websocket.Upgrader
}

func NewStreamHandler(
	store *sessions.Store,
	extractor *pose.Extractor,
	analyzer *Analyzer,
	metricsManager *metrics.Manager,
) *StreamHandler {
	return &StreamHandler{
		store:          store,
		extractor:      extractor,
		analyzer:       analyzer,
		metricsManager: metricsManager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// cross-origin clients are allowed, same as the rest of the API
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *StreamHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["sessionId"]

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("upgrade stream connection for session [%s]: %s", sessionID, err)
		return
	}

	if h.metricsManager != nil {
		h.metricsManager.GaugeOpenStreams.Inc()
		defer h.metricsManager.GaugeOpenStreams.Dec()
	}

	if _, found := h.store.GetSession(sessionID); !found {
		log.Tracef("stream rejected, session [%s] not found", sessionID)
		h.writeError(conn, "Session not found")
		_ = conn.Close()
		return
	}

	// the store owns the connection from here: a Stop call (or an eviction)
	// closes it, which unblocks the read loop below
	h.store.BindChannel(sessionID, conn)

	defer func() {
		// cleanup guarantee: no exit path leaves the session active
		h.store.StopSession(sessionID)
		_ = conn.Close()
	}()

	log.Tracef("stream open for session [%s]", sessionID)
	h.streamLoop(r.Context(), conn, sessionID)
	log.Tracef("stream closed for session [%s]", sessionID)
}

func (h *StreamHandler) streamLoop(ctx context.Context, conn *websocket.Conn, sessionID string) {
	for {
		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debugf("stream for session [%s] closed: %s", sessionID, err)
			}
			return
		}

		switch messageType {
		case websocket.BinaryMessage:
			// raw frame bytes, no envelope
			h.handleFrame(ctx, conn, sessionID, payload, false)
		case websocket.TextMessage:
			var msg clientMessage
			if err := json.Unmarshal(payload, &msg); err != nil {
				log.Warnf("stream for session [%s]: malformed message: %s", sessionID, err)
				continue
			}
			switch msg.Type {
			case messageTypeFrame:
				h.handleFrame(ctx, conn, sessionID, []byte(msg.Data), msg.IncludeAnnotated)
			case messageTypePing:
				h.writeMessage(conn, sessionID, pongMessage{Type: messageTypePong, Timestamp: time.Now()})
			default:
				log.Warnf("stream for session [%s]: unknown message type [%s]", sessionID, msg.Type)
			}
		default:
			log.Warnf("stream for session [%s]: unexpected websocket message type %d", sessionID, messageType)
		}
	}
}

func (h *StreamHandler) handleFrame(
	ctx context.Context,
	conn *websocket.Conn,
	sessionID string,
	frameData []byte,
	includeAnnotated bool,
) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stream.handleFrame")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", sessionID))

	if h.metricsManager != nil {
		h.metricsManager.CounterFramesProcessed.Inc()
	}

	result, err := h.extractor.ProcessFrame(ctx, frameData, includeAnnotated)
	if err != nil {
		// per-frame failure, the stream goes on
		log.Debugf("process frame for session [%s]: %s", sessionID, err)
		if h.metricsManager != nil {
			h.metricsManager.CounterFrameDecodeErrors.Inc()
		}
		result = &pose.FrameResult{}
	}

	observation := result.Observation
	if observation != nil && h.metricsManager != nil {
		h.metricsManager.CounterPosesDetected.Inc()
	}

	var frameMetrics *Metrics
	found := h.store.UpdateSession(sessionID, func(session *sessions.Session) {
		session.FrameCount++
		session.TotalFrames++
		session.CurrentPose = observation

		if observation == nil || session.ExerciseName == "" {
			return
		}

		session.RecordPose(observation, h.store.PoseHistoryBound())
		m := h.analyzer.Analyze(ParseExercise(session.ExerciseName), observation, session.PoseHistory)
		session.LatestMetrics = &m
		frameMetrics = &m
	})
	if !found {
		h.writeError(conn, "Session not found")
		return
	}

	h.writeMessage(conn, sessionID, analysisMessage{
		Type:           messageTypeAnalysis,
		SessionID:      sessionID,
		Timestamp:      time.Now(),
		PoseDetected:   observation != nil,
		Metrics:        frameMetrics,
		AnnotatedFrame: result.AnnotatedFrame,
	})
}

func (h *StreamHandler) writeError(conn *websocket.Conn, message string) {
	h.writeMessage(conn, "", errorMessage{Type: messageTypeError, Message: message})
}

func (h *StreamHandler) writeMessage(conn *websocket.Conn, sessionID string, message any) {
	if err := conn.WriteJSON(message); err != nil {
		log.Errorf("write stream message for session [%s]: %s", sessionID, err)
	}
}
