package formanalysis

import (
	"math"

	"github.com/swanstudios/formsight/internal/pose"
	"github.com/swanstudios/formsight/internal/telemetry/metrics"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

const (
	phaseAnalysis        = "analysis"
	phaseGeneralAnalysis = "general_analysis"

	analysisErrorIssue = "Analysis error occurred"
)

// Analyzer scores exercise form from a pose observation plus the session's
// rolling pose history (oldest to newest). All analysis is pure computation;
// the analyzer itself holds no per-session state.
type Analyzer struct {
	metricsManager *metrics.Manager
}

func NewAnalyzer(metricsManager *metrics.Manager) *Analyzer {
	return &Analyzer{
		metricsManager: metricsManager,
	}
}

// Analyze runs the exercise-specific form check. It never panics: any error
// during analysis degrades to the fallback metrics instead of killing the
// streaming loop.
func (a *Analyzer) Analyze(
	exercise Exercise,
	observation *pose.Observation,
	history []*pose.Observation,
) (m Metrics) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("analysis error for exercise [%s]: %v", exercise, r)
			if a.metricsManager != nil {
				a.metricsManager.CounterAnalysisErrors.Inc()
			}
			m = a.errorFallback(exercise)
		}
	}()

	switch exercise {
	case ExerciseSquat:
		return a.analyzeSquat(observation)
	case ExerciseDeadlift:
		return a.analyzeDeadlift(observation, history)
	case ExerciseBenchPress:
		return a.analyzeBenchPress(observation)
	case ExerciseOverheadPress:
		return a.analyzeOverheadPress(observation)
	case ExercisePlank:
		return a.analyzePlank(observation)
	default:
		return a.analyzeDefault()
	}
}

func (a *Analyzer) analyzeSquat(observation *pose.Observation) Metrics {
	report := newScoreReport()
	keypoints := observation.Keypoints

	if observation.HasKeypoints(pose.JointLeftHip, pose.JointLeftKnee, pose.JointLeftAnkle) {
		kneeAngle := AngleAt(
			keypoints[pose.JointLeftHip],
			keypoints[pose.JointLeftKnee],
			keypoints[pose.JointLeftAnkle],
		)
		report.keyAngles["left_knee"] = kneeAngle

		if kneeAngle < 90 {
			report.formIssue(15, "Knees collapsing inward", "Keep knees tracking over toes")
		}
	}

	if observation.HasKeypoints(pose.JointLeftShoulder, pose.JointLeftHip, pose.JointLeftKnee) {
		backAngle := AngleAt(
			keypoints[pose.JointLeftShoulder],
			keypoints[pose.JointLeftHip],
			keypoints[pose.JointLeftKnee],
		)
		report.keyAngles["back_angle"] = backAngle

		if backAngle < 45 || backAngle > 75 {
			report.formIssue(10, "Improper back position", "Maintain neutral spine")
		}
	}

	if observation.HasKeypoints(pose.JointLeftHip, pose.JointLeftKnee) {
		// image coordinates grow downward: a hip above the knee on screen
		// means the lifter has not reached depth
		hipY := keypoints[pose.JointLeftHip].Y
		kneeY := keypoints[pose.JointLeftKnee].Y
		if hipY < kneeY {
			report.formIssue(20, "Insufficient squat depth", "Squat deeper - hips below knees")
		}
	}

	return report.metrics(ExerciseSquat)
}

func (a *Analyzer) analyzeDeadlift(observation *pose.Observation, history []*pose.Observation) Metrics {
	report := newScoreReport()
	keypoints := observation.Keypoints

	if observation.HasKeypoints(pose.JointLeftShoulder, pose.JointLeftHip, pose.JointLeftKnee) {
		backAngle := AngleAt(
			keypoints[pose.JointLeftShoulder],
			keypoints[pose.JointLeftHip],
			keypoints[pose.JointLeftKnee],
		)
		report.keyAngles["back_angle"] = backAngle

		if backAngle < 30 {
			report.safetyIssue(25, "Back rounding detected", "Keep back straight and chest up")
		}
	}

	// bar-path proxy: lateral hip drift over the most recent frames
	if len(history) > 5 {
		var hipXs []float64
		for _, past := range history[len(history)-6:] {
			if hip, ok := past.Keypoint(pose.JointLeftHip); ok {
				hipXs = append(hipXs, hip.X)
			}
		}
		if len(hipXs) > 0 && stat.PopStdDev(hipXs, nil) > 10 {
			report.formIssue(15, "Bar drifting forward", "Keep bar close to body")
		}
	}

	return report.metrics(ExerciseDeadlift)
}

func (a *Analyzer) analyzeBenchPress(observation *pose.Observation) Metrics {
	report := newScoreReport()
	keypoints := observation.Keypoints

	if observation.HasKeypoints(pose.JointLeftShoulder, pose.JointLeftElbow, pose.JointLeftWrist) {
		elbowAngle := AngleAt(
			keypoints[pose.JointLeftShoulder],
			keypoints[pose.JointLeftElbow],
			keypoints[pose.JointLeftWrist],
		)
		report.keyAngles["left_elbow"] = elbowAngle

		if elbowAngle > 90 {
			report.safetyIssue(15, "Elbows flaring too wide", "Keep elbows at 45-degree angle")
		}
	}

	if observation.HasKeypoints(pose.JointLeftElbow, pose.JointLeftWrist) {
		elbowY := keypoints[pose.JointLeftElbow].Y
		wristY := keypoints[pose.JointLeftWrist].Y
		if math.Abs(elbowY-wristY) > 20 {
			report.formIssue(10, "Wrist not aligned with elbow", "Keep wrists straight under elbows")
		}
	}

	return report.metrics(ExerciseBenchPress)
}

func (a *Analyzer) analyzeOverheadPress(observation *pose.Observation) Metrics {
	report := newScoreReport()
	keypoints := observation.Keypoints

	if observation.HasKeypoints(pose.JointLeftShoulder, pose.JointLeftElbow, pose.JointLeftWrist) {
		shoulderAngle := AngleAt(
			keypoints[pose.JointLeftElbow],
			keypoints[pose.JointLeftShoulder],
			keypoints[pose.JointLeftWrist],
		)
		report.keyAngles["shoulder_elevation"] = shoulderAngle

		shoulderY := keypoints[pose.JointLeftShoulder].Y
		wristY := keypoints[pose.JointLeftWrist].Y
		if wristY > shoulderY-50 {
			report.formIssue(20, "Insufficient overhead reach", "Press weights directly overhead")
		}
	}

	if observation.HasKeypoints(pose.JointLeftShoulder, pose.JointLeftHip) {
		shoulderX := keypoints[pose.JointLeftShoulder].X
		hipX := keypoints[pose.JointLeftHip].X
		if math.Abs(shoulderX-hipX) > 30 {
			report.safetyIssue(15, "Excessive back arch", "Maintain tight core")
		}
	}

	return report.metrics(ExerciseOverheadPress)
}

func (a *Analyzer) analyzePlank(observation *pose.Observation) Metrics {
	report := newScoreReport()
	keypoints := observation.Keypoints

	if observation.HasKeypoints(pose.JointLeftShoulder, pose.JointLeftHip, pose.JointLeftAnkle) {
		bodyLine := AngleAt(
			keypoints[pose.JointLeftShoulder],
			keypoints[pose.JointLeftHip],
			keypoints[pose.JointLeftAnkle],
		)
		report.keyAngles["body_line"] = bodyLine

		if bodyLine < 170 || bodyLine > 190 {
			report.formIssue(15, "Body not in straight line", "Maintain straight line from head to heels")
		}
	}

	if observation.HasKeypoints(pose.JointLeftShoulder, pose.JointLeftHip, pose.JointLeftKnee) {
		shoulderY := keypoints[pose.JointLeftShoulder].Y
		hipY := keypoints[pose.JointLeftHip].Y
		kneeY := keypoints[pose.JointLeftKnee].Y
		mid := (shoulderY + kneeY) / 2

		if hipY > mid+20 {
			report.formIssue(20, "Hips sagging", "Engage core to lift hips")
		} else if hipY < mid-20 {
			report.formIssue(10, "Hips too high", "Lower hips slightly")
		}
	}

	return report.metrics(ExercisePlank)
}

func (a *Analyzer) analyzeDefault() Metrics {
	return Metrics{
		ExerciseName:    ExerciseUnknown.String(),
		FormScore:       75.0,
		SafetyScore:     85.0,
		KeyAngles:       map[string]float64{},
		Issues:          []string{"Exercise not recognized"},
		Improvements:    []string{"Select a specific exercise for detailed analysis"},
		CurrentPhase:    phaseGeneralAnalysis,
		MovementQuality: 70.0,
	}
}

func (a *Analyzer) errorFallback(exercise Exercise) Metrics {
	return Metrics{
		ExerciseName:    exercise.String(),
		FormScore:       50.0,
		SafetyScore:     100.0,
		KeyAngles:       map[string]float64{},
		Issues:          []string{analysisErrorIssue},
		Improvements:    []string{},
		CurrentPhase:    phaseAnalysis,
		MovementQuality: 50.0 * exercise.movementQualityFactor(),
	}
}

// movementQualityFactor is the fixed fraction of the form score reported as
// movement quality, per exercise.
func (e Exercise) movementQualityFactor() float64 {
	switch e {
	case ExerciseDeadlift, ExercisePlank:
		return 0.9
	case ExerciseBenchPress:
		return 0.85
	default:
		return 0.8
	}
}

// scoreReport accumulates deductions and findings for one analyzed frame.
type scoreReport struct {
	formScore    float64
	safetyScore  float64
	keyAngles    map[string]float64
	issues       []string
	improvements []string
}

func newScoreReport() *scoreReport {
	return &scoreReport{
		formScore:    100.0,
		safetyScore:  100.0,
		keyAngles:    map[string]float64{},
		issues:       []string{},
		improvements: []string{},
	}
}

func (r *scoreReport) formIssue(deduction float64, issue, improvement string) {
	r.formScore -= deduction
	r.issues = append(r.issues, issue)
	r.improvements = append(r.improvements, improvement)
}

func (r *scoreReport) safetyIssue(deduction float64, issue, improvement string) {
	r.safetyScore -= deduction
	r.issues = append(r.issues, issue)
	r.improvements = append(r.improvements, improvement)
}

func (r *scoreReport) metrics(exercise Exercise) Metrics {
	return Metrics{
		ExerciseName:    exercise.String(),
		FormScore:       math.Max(0, r.formScore),
		SafetyScore:     math.Max(0, r.safetyScore),
		KeyAngles:       r.keyAngles,
		Issues:          r.issues,
		Improvements:    r.improvements,
		CurrentPhase:    phaseAnalysis,
		MovementQuality: math.Max(0, r.formScore) * exercise.movementQualityFactor(),
	}
}
