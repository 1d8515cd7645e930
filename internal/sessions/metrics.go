package sessions

// Metrics is the per-frame form assessment recorded on a session. It is
// recomputed from scratch on every analyzed frame and replaces the previous
// value; the rolling pose history is the only cross-frame input.
type Metrics struct {
	ExerciseName    string             `json:"exerciseName"`
	FormScore       float64            `json:"formScore"`
	SafetyScore     float64            `json:"safetyScore"`
	KeyAngles       map[string]float64 `json:"keyAngles"`
	Issues          []string           `json:"issues"`
	Improvements    []string           `json:"improvements"`
	RepCount        int                `json:"repCount"`
	CurrentPhase    string             `json:"currentPhase"`
	MovementQuality float64            `json:"movementQuality"`
}
