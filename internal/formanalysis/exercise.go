package formanalysis

import "strings"

// Exercise is the closed set of exercises with a dedicated form analyzer.
// Anything else falls through to ExerciseUnknown and the default analysis.
type Exercise int

const (
	ExerciseUnknown Exercise = iota
	ExerciseSquat
	ExerciseDeadlift
	ExerciseBenchPress
	ExerciseOverheadPress
	ExercisePlank
)

// ParseExercise maps a free-form exercise name to its analyzer variant.
// Names are matched case-insensitively, with spaces treated as underscores.
func ParseExercise(name string) Exercise {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_") {
	case "squat":
		return ExerciseSquat
	case "deadlift":
		return ExerciseDeadlift
	case "bench_press":
		return ExerciseBenchPress
	case "overhead_press":
		return ExerciseOverheadPress
	case "plank":
		return ExercisePlank
	default:
		return ExerciseUnknown
	}
}

func (e Exercise) String() string {
	switch e {
	case ExerciseSquat:
		return "squat"
	case ExerciseDeadlift:
		return "deadlift"
	case ExerciseBenchPress:
		return "bench_press"
	case ExerciseOverheadPress:
		return "overhead_press"
	case ExercisePlank:
		return "plank"
	default:
		return "unknown"
	}
}
