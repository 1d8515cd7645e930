package pose

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/swanstudios/formsight/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

//go:generate mockgen -source=$GOFILE -destination=inference_mocks_test.go -package=pose_test

// Detection is one detected person as reported by the pose model.
type Detection struct {
	// Keypoints come in COCO order, one entry per landmark in Joints.
	Keypoints []Point2D
	Box       *BoundingBox
	Score     float64
}

// Model is the external pose-estimation model. Load is idempotent and may be
// called concurrently; whether Detect is safe for concurrent use is up to the
// implementation, callers that need a guarantee serialize it themselves.
type Model interface {
	Load(ctx context.Context) error
	Loaded() bool
	Detect(ctx context.Context, frameJPEG []byte, confThreshold, iouThreshold float64) ([]Detection, error)
}

// InferenceAPI talks to the YOLO pose inference sidecar over HTTP. Loading the
// model happens inside the sidecar; Load only triggers and awaits its warm-up
// so the first streamed frame does not pay the model-load latency.
type InferenceAPI struct {
	mu         sync.Mutex
	loaded     bool
	baseURL    string
	httpClient *http.Client
}

func NewInferenceAPI(baseURL string, httpClient *http.Client) *InferenceAPI {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &InferenceAPI{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// Load warms the pose model up. Safe to call more than once; after the first
// success it is a no-op.
func (api *InferenceAPI) Load(ctx context.Context) error {
	api.mu.Lock()
	defer api.mu.Unlock()

	if api.loaded {
		return nil
	}

	ctx, span := tracing.GlobalTracer.Start(ctx, "pose.inference.load")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, api.baseURL+"/warmup", nil)
	if err != nil {
		return fmt.Errorf("create warmup request: %w", err)
	}

	resp, err := api.httpClient.Do(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("warmup pose model: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Warnf("close warmup response body: %s", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		span.SetStatus(codes.Error, fmt.Sprintf("warmup status %d", resp.StatusCode))
		return fmt.Errorf("warmup pose model: unexpected status %d", resp.StatusCode)
	}

	api.loaded = true
	log.Infof("pose model warmed up via %s", api.baseURL)
	return nil
}

func (api *InferenceAPI) Loaded() bool {
	api.mu.Lock()
	defer api.mu.Unlock()
	return api.loaded
}

type predictRequest struct {
	Image         string  `json:"image"`
	ConfThreshold float64 `json:"conf_threshold"`
	IOUThreshold  float64 `json:"iou_threshold"`
}

type predictResponse struct {
	Detections []struct {
		// keypoints: [x, y, confidence] triplets in COCO order
		Keypoints [][3]float64 `json:"keypoints"`
		Box       []float64    `json:"box"`
		Score     float64      `json:"score"`
	} `json:"detections"`
}

// Detect runs one pose inference for the given JPEG frame.
func (api *InferenceAPI) Detect(
	ctx context.Context,
	frameJPEG []byte,
	confThreshold, iouThreshold float64,
) ([]Detection, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "pose.inference.detect")
	defer span.End()
	span.SetAttributes(attribute.Int("frame.bytes", len(frameJPEG)))

	reqBody, err := json.Marshal(predictRequest{
		Image:         base64.StdEncoding.EncodeToString(frameJPEG),
		ConfThreshold: confThreshold,
		IOUThreshold:  iouThreshold,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, api.baseURL+"/predict", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := api.httpClient.Do(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("pose inference call: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Warnf("close predict response body: %s", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		span.SetStatus(codes.Error, fmt.Sprintf("predict status %d", resp.StatusCode))
		return nil, fmt.Errorf("pose inference: unexpected status %d", resp.StatusCode)
	}

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read predict response: %w", err)
	}

	var predictResp predictResponse
	if err := json.Unmarshal(respBytes, &predictResp); err != nil {
		return nil, fmt.Errorf("unmarshal predict response: %w", err)
	}

	detections := make([]Detection, 0, len(predictResp.Detections))
	for _, d := range predictResp.Detections {
		detection := Detection{Score: d.Score}
		for _, kp := range d.Keypoints {
			detection.Keypoints = append(detection.Keypoints, Point2D{
				X:          kp[0],
				Y:          kp[1],
				Confidence: kp[2],
			})
		}
		if len(d.Box) == 4 {
			detection.Box = &BoundingBox{X0: d.Box[0], Y0: d.Box[1], X1: d.Box[2], Y1: d.Box[3]}
		}
		detections = append(detections, detection)
	}

	span.SetAttributes(attribute.Int("detections", len(detections)))
	return detections, nil
}
