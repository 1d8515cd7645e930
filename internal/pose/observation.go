package pose

import (
	"errors"
	"time"
)

var ErrNoKeypoints = errors.New("observation must contain at least one keypoint")

// Point2D is an immutable 2D image coordinate with an optional per-joint
// detection confidence.
type Point2D struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Confidence float64 `json:"confidence,omitempty"`
}

// BoundingBox is the (x0, y0, x1, y1) person box reported by the model.
type BoundingBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Observation holds the detected joints of one person for one frame.
// Absence of a person in frame is a nil *Observation, never an empty one.
type Observation struct {
	Keypoints  map[Joint]Point2D `json:"keypoints"`
	BBox       *BoundingBox      `json:"bbox,omitempty"`
	Confidence float64           `json:"confidence"`
	CapturedAt time.Time         `json:"timestamp"`
}

// NewObservation builds an immutable observation. An observation without any
// keypoints is invalid and must not be constructed.
func NewObservation(
	keypoints map[Joint]Point2D,
	bbox *BoundingBox,
	confidence float64,
	capturedAt time.Time,
) (*Observation, error) {
	if len(keypoints) == 0 {
		return nil, ErrNoKeypoints
	}
	return &Observation{
		Keypoints:  keypoints,
		BBox:       bbox,
		Confidence: confidence,
		CapturedAt: capturedAt,
	}, nil
}

// Keypoint returns the given joint, if it was detected.
func (o *Observation) Keypoint(j Joint) (Point2D, bool) {
	p, ok := o.Keypoints[j]
	return p, ok
}

// HasKeypoints reports whether all given joints were detected.
func (o *Observation) HasKeypoints(joints ...Joint) bool {
	for _, j := range joints {
		if _, ok := o.Keypoints[j]; !ok {
			return false
		}
	}
	return true
}
