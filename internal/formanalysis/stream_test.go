package formanalysis_test

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/swanstudios/formsight/internal/formanalysis"
	"github.com/swanstudios/formsight/internal/pose"
	"github.com/swanstudios/formsight/internal/sessions"
	"github.com/swanstudios/formsight/internal/telemetry/metrics"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func streamTestFrame(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := 0; i < 8; i++ {
		img.Set(i, i, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

// squatDetection produces a single pose whose left hip, knee and ankle form a
// collapsed knee angle of 45 degrees. All other joints sit under the
// confidence floor and get dropped.
func squatDetection() pose.Detection {
	keypoints := make([]pose.Point2D, 17)
	for i := range keypoints {
		keypoints[i] = pose.Point2D{X: 1, Y: 1, Confidence: 0.05}
	}
	keypoints[11] = pose.Point2D{X: 5, Y: 5, Confidence: 0.9}  // left hip
	keypoints[13] = pose.Point2D{X: 0, Y: 0, Confidence: 0.9}  // left knee
	keypoints[15] = pose.Point2D{X: 0, Y: 10, Confidence: 0.9} // left ankle
	return pose.Detection{Keypoints: keypoints, Score: 0.9}
}

type streamTestTools struct {
	server *httptest.Server
	store  *sessions.Store
}

func newStreamTestTools(t *testing.T, model pose.Model) *streamTestTools {
	t.Helper()
	store := sessions.NewStore(sessions.StoreParams{
		MaxSessions:    10,
		MaxPoseHistory: 30,
		MetricsManager: metrics.NewTestManager(),
	})
	extractor := pose.NewExtractor(pose.ExtractorParams{
		Model:               model,
		ConfidenceThreshold: 0.5,
		IOUThreshold:        0.5,
		InferenceTimeout:    time.Second,
		MetricsManager:      metrics.NewTestManager(),
	})
	analyzer := formanalysis.NewAnalyzer(metrics.NewTestManager())
	streamHandler := formanalysis.NewStreamHandler(store, extractor, analyzer, metrics.NewTestManager())

	router := mux.NewRouter()
	router.HandleFunc("/ws/form-analysis/{sessionId}", streamHandler.HandleStream).Methods("GET")
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &streamTestTools{server: server, store: store}
}

func (tools *streamTestTools) dial(t *testing.T, sessionID string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(tools.server.URL, "http") + "/ws/form-analysis/" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestStream_PingPong(t *testing.T) {
	tools := newStreamTestTools(t, &fakeModel{})
	session := tools.store.CreateSession("u1", "", "squat")
	conn := tools.dial(t, session.ID)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))

	var pong map[string]any
	require.NoError(t, conn.ReadJSON(&pong))
	assert.Equal(t, "pong", pong["type"])
	assert.NotEmpty(t, pong["timestamp"])
}

func TestStream_BinaryFrameAnalyzed(t *testing.T) {
	tools := newStreamTestTools(t, &fakeModel{detections: []pose.Detection{squatDetection()}})
	session := tools.store.CreateSession("u1", "", "squat")
	conn := tools.dial(t, session.ID)

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, streamTestFrame(t)))

	var analysis map[string]any
	require.NoError(t, conn.ReadJSON(&analysis))
	assert.Equal(t, "analysis", analysis["type"])
	assert.Equal(t, session.ID, analysis["sessionId"])
	assert.Equal(t, true, analysis["poseDetected"])

	frameMetrics, ok := analysis["metrics"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 85.0, frameMetrics["formScore"])
	assert.Equal(t, 100.0, frameMetrics["safetyScore"])
	assert.Equal(t, 68.0, frameMetrics["movementQuality"])

	// session state caught up with the processed frame
	stored, found := tools.store.GetSession(session.ID)
	require.True(t, found)
	assert.Equal(t, 1, stored.FrameCount)
	require.Len(t, stored.PoseHistory, 1)
	require.NotNil(t, stored.LatestMetrics)
	assert.Equal(t, 85.0, stored.LatestMetrics.FormScore)
}

func TestStream_JSONFrameWithAnnotation(t *testing.T) {
	tools := newStreamTestTools(t, &fakeModel{detections: []pose.Detection{squatDetection()}})
	session := tools.store.CreateSession("u1", "", "squat")
	conn := tools.dial(t, session.ID)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":             "frame",
		"data":             base64.StdEncoding.EncodeToString(streamTestFrame(t)),
		"includeAnnotated": true,
	}))

	var analysis map[string]any
	require.NoError(t, conn.ReadJSON(&analysis))
	assert.Equal(t, "analysis", analysis["type"])
	assert.Equal(t, true, analysis["poseDetected"])
	annotated, ok := analysis["annotatedFrame"].(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(annotated, "data:image/jpeg;base64,"))
}

func TestStream_UndecodableFrameKeepsStreamAlive(t *testing.T) {
	tools := newStreamTestTools(t, &fakeModel{})
	session := tools.store.CreateSession("u1", "", "squat")
	conn := tools.dial(t, session.ID)

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte("not an image")))

	var analysis map[string]any
	require.NoError(t, conn.ReadJSON(&analysis))
	assert.Equal(t, "analysis", analysis["type"])
	assert.Equal(t, false, analysis["poseDetected"])
	assert.Nil(t, analysis["metrics"])

	// the connection is still usable
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	var pong map[string]any
	require.NoError(t, conn.ReadJSON(&pong))
	assert.Equal(t, "pong", pong["type"])
}

func TestStream_UnknownMessageTypeIgnored(t *testing.T) {
	tools := newStreamTestTools(t, &fakeModel{})
	session := tools.store.CreateSession("u1", "", "squat")
	conn := tools.dial(t, session.ID)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "telemetry"}))

	// the stream survives and keeps answering
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	var pong map[string]any
	require.NoError(t, conn.ReadJSON(&pong))
	assert.Equal(t, "pong", pong["type"])
}

func TestStream_UnknownSessionRejected(t *testing.T) {
	tools := newStreamTestTools(t, &fakeModel{})
	conn := tools.dial(t, "no-such-session")

	var errMsg map[string]any
	require.NoError(t, conn.ReadJSON(&errMsg))
	assert.Equal(t, "error", errMsg["type"])
	assert.Equal(t, "Session not found", errMsg["message"])

	// server closes the connection after the rejection
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestStream_DisconnectStopsSession(t *testing.T) {
	tools := newStreamTestTools(t, &fakeModel{})
	session := tools.store.CreateSession("u1", "", "squat")
	conn := tools.dial(t, session.ID)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	var pong map[string]any
	require.NoError(t, conn.ReadJSON(&pong))

	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		stored, found := tools.store.GetSession(session.ID)
		return found && !stored.Active
	}, 2*time.Second, 10*time.Millisecond)
}
