package pose

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"sync"
	"time"

	"github.com/swanstudios/formsight/internal/telemetry/metrics"
	"github.com/swanstudios/formsight/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"gonum.org/v1/gonum/stat"
)

// KeypointMinConfidence is the confidence under which a joint counts as
// undetected and is left out of the observation. Analyzers treat a missing
// joint as "skip this check", so dropping noise here keeps them honest.
const KeypointMinConfidence = 0.3

// ExtractorParams configures a pose extractor.
type ExtractorParams struct {
	Model               Model
	ConfidenceThreshold float64
	IOUThreshold        float64
	InferenceTimeout    time.Duration
	MetricsManager      *metrics.Manager
}

// Extractor turns frames into observations via the shared pose model. The
// model instance is shared by every streaming loop in the process, and the
// inference contract does not promise reentrancy, so Detect calls are
// serialized here.
type Extractor struct {
	inferenceMu         sync.Mutex
	model               Model
	confidenceThreshold float64
	iouThreshold        float64
	inferenceTimeout    time.Duration
	metricsManager      *metrics.Manager
}

func NewExtractor(params ExtractorParams) *Extractor {
	return &Extractor{
		model:               params.Model,
		confidenceThreshold: params.ConfidenceThreshold,
		iouThreshold:        params.IOUThreshold,
		inferenceTimeout:    params.InferenceTimeout,
		metricsManager:      params.MetricsManager,
	}
}

// FrameResult is the outcome of processing one frame. Observation is nil when
// no person was detected; AnnotatedFrame is a base64 JPEG data URI, set only
// when requested and a frame could be rendered.
type FrameResult struct {
	Observation    *Observation
	AnnotatedFrame string
}

// ProcessFrame decodes the frame, runs pose inference and builds the
// observation. A decode failure or inference error is returned as an error;
// callers report it as "no pose detected this frame" and keep streaming.
func (e *Extractor) ProcessFrame(ctx context.Context, frameData []byte, includeAnnotated bool) (*FrameResult, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "pose.extractor.processFrame")
	defer span.End()

	img, err := DecodeFrame(frameData)
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	// normalize to JPEG so the model side never sees an exotic codec
	var jpegBuf bytes.Buffer
	if err := jpeg.Encode(&jpegBuf, img, nil); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}

	detections, err := e.detect(ctx, jpegBuf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("pose detection: %w", err)
	}

	observation := e.bestObservation(detections)
	span.SetAttributes(attribute.Bool("pose.detected", observation != nil))

	result := &FrameResult{Observation: observation}
	if includeAnnotated {
		result.AnnotatedFrame = e.renderAnnotated(img, observation)
	}
	return result, nil
}

func (e *Extractor) detect(ctx context.Context, frameJPEG []byte) ([]Detection, error) {
	e.inferenceMu.Lock()
	defer e.inferenceMu.Unlock()

	if e.inferenceTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.inferenceTimeout)
		defer cancel()
	}

	started := time.Now()
	detections, err := e.model.Detect(ctx, frameJPEG, e.confidenceThreshold, e.iouThreshold)
	if e.metricsManager != nil {
		e.metricsManager.HistInferenceDuration.Observe(time.Since(started).Seconds())
	}
	return detections, err
}

// bestObservation picks the detection with the highest mean keypoint
// confidence and converts it. Multi-person tracking is out of scope; the rest
// of the detections are discarded.
func (e *Extractor) bestObservation(detections []Detection) *Observation {
	var best *Detection
	bestConfidence := -1.0
	for i := range detections {
		c := meanKeypointConfidence(detections[i].Keypoints)
		if c > bestConfidence {
			best = &detections[i]
			bestConfidence = c
		}
	}
	if best == nil || len(best.Keypoints) == 0 {
		return nil
	}

	keypoints := make(map[Joint]Point2D)
	for i, kp := range best.Keypoints {
		if i >= len(Joints) {
			log.Warnf("pose detection carries %d keypoints, expected at most %d", len(best.Keypoints), len(Joints))
			break
		}
		if kp.Confidence < KeypointMinConfidence {
			continue
		}
		keypoints[Joints[i]] = kp
	}

	observation, err := NewObservation(keypoints, best.Box, bestConfidence, time.Now())
	if err != nil {
		// every joint fell under the confidence floor: no usable pose
		return nil
	}
	return observation
}

func (e *Extractor) renderAnnotated(img image.Image, observation *Observation) string {
	annotated, err := Annotate(img, observation)
	if err != nil {
		log.Errorf("render annotated frame: %s", err)
		return ""
	}
	return annotated
}

func meanKeypointConfidence(keypoints []Point2D) float64 {
	if len(keypoints) == 0 {
		return 0
	}
	confidences := make([]float64, len(keypoints))
	for i, kp := range keypoints {
		confidences[i] = kp.Confidence
	}
	return stat.Mean(confidences, nil)
}
