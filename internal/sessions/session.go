package sessions

import (
	"time"

	"github.com/swanstudios/formsight/internal/pose"
)

// Session is the mutable state of one form-analysis session. All access goes
// through the Store; callers only ever see snapshot copies, except inside an
// Update mutation which runs under the store lock.
type Session struct {
	ID            string
	UserID        string
	ExerciseID    string
	ExerciseName  string
	Active        bool
	StartedAt     time.Time
	LastUpdatedAt time.Time

	FrameCount    int
	TotalFrames   int
	CurrentPose   *pose.Observation
	PoseHistory   []*pose.Observation
	LatestMetrics *Metrics
}

// RecordPose appends the observation to the rolling pose history, evicting the
// oldest entries first so the bound holds at every observation point, not just
// after the enclosing store update completes.
func (s *Session) RecordPose(observation *pose.Observation, maxHistory int) {
	s.PoseHistory = append(s.PoseHistory, observation)
	s.trimPoseHistory(maxHistory)
}

func (s *Session) trimPoseHistory(maxHistory int) {
	if over := len(s.PoseHistory) - maxHistory; over > 0 {
		s.PoseHistory = append(s.PoseHistory[:0:0], s.PoseHistory[over:]...)
	}
}

// snapshot returns a copy safe to hand out after the store lock is released.
// Observations and metrics are treated as immutable once recorded, so sharing
// the pointed-to values is fine; only the slice and the struct are copied.
func (s *Session) snapshot() *Session {
	cp := *s
	cp.PoseHistory = make([]*pose.Observation, len(s.PoseHistory))
	copy(cp.PoseHistory, s.PoseHistory)
	if s.LatestMetrics != nil {
		m := *s.LatestMetrics
		cp.LatestMetrics = &m
	}
	return &cp
}

// LastFormScore is the form score of the most recently analyzed frame, or 0
// when no frame was ever analyzed. The rolling pose history is the only other
// cross-frame state a session keeps.
func (s *Session) LastFormScore() float64 {
	if s.LatestMetrics == nil {
		return 0
	}
	return s.LatestMetrics.FormScore
}

// Duration is the session length up to now for active sessions, or up to the
// last recorded update for stopped ones.
func (s *Session) Duration(now time.Time) time.Duration {
	if s.Active {
		return now.Sub(s.StartedAt)
	}
	return s.LastUpdatedAt.Sub(s.StartedAt)
}
