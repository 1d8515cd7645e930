package sessions

import (
	"sync"
	"time"

	"github.com/swanstudios/formsight/internal/pose"
	"github.com/swanstudios/formsight/internal/telemetry/metrics"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultMaxSessions    = 50
	DefaultMaxPoseHistory = 30
)

// Channel is a live client connection bound to a session. The store closes
// the channel when its session stops or when a newer connection replaces it.
type Channel interface {
	Close() error
}

type StoreParams struct {
	MaxSessions    int
	MaxPoseHistory int
	MetricsManager *metrics.Manager
}

// Store keeps all form-analysis sessions behind one mutex. The session cap is
// soft: when full, the oldest inactive session is evicted to make room, but an
// all-active store still accepts new sessions rather than rejecting clients.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	channels map[string]Channel

	maxSessions    int
	maxPoseHistory int
	metricsManager *metrics.Manager
}

func NewStore(params StoreParams) *Store {
	if params.MaxSessions <= 0 {
		params.MaxSessions = DefaultMaxSessions
	}
	if params.MaxPoseHistory <= 0 {
		params.MaxPoseHistory = DefaultMaxPoseHistory
	}
	return &Store{
		sessions:       map[string]*Session{},
		channels:       map[string]Channel{},
		maxSessions:    params.MaxSessions,
		maxPoseHistory: params.MaxPoseHistory,
		metricsManager: params.MetricsManager,
	}
}

// CreateSession registers a new active session and returns a snapshot of it.
func (s *Store) CreateSession(userID, exerciseID, exerciseName string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sessions) >= s.maxSessions {
		s.evictOldestInactive()
	}

	now := time.Now()
	session := &Session{
		ID:            uuid.NewString(),
		UserID:        userID,
		ExerciseID:    exerciseID,
		ExerciseName:  exerciseName,
		Active:        true,
		StartedAt:     now,
		LastUpdatedAt: now,
		PoseHistory:   []*pose.Observation{},
	}
	s.sessions[session.ID] = session

	if s.metricsManager != nil {
		s.metricsManager.CounterSessionsStarted.Inc()
		s.metricsManager.GaugeActiveSessions.Set(float64(s.activeCount()))
	}

	return session.snapshot()
}

// GetSession returns a snapshot of the session, if it exists.
func (s *Store) GetSession(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	return session.snapshot(), true
}

// UpdateSession applies mutate to the session under the store lock and bumps
// its last-update time. Pose history is trimmed to the configured bound after
// the mutation, oldest observations first. Unknown ids are a no-op.
func (s *Store) UpdateSession(id string, mutate func(*Session)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return false
	}

	mutate(session)
	session.trimPoseHistory(s.maxPoseHistory)
	session.LastUpdatedAt = time.Now()
	return true
}

// PoseHistoryBound is the configured rolling pose history cap. Mutators that
// run analysis against the history use it to trim via RecordPose before
// analyzing, so the bound holds when the analyzer reads the history.
func (s *Store) PoseHistoryBound() int {
	return s.maxPoseHistory
}

// StopSession deactivates the session and closes any bound channel. It is
// idempotent; stopping an already stopped session returns its snapshot again.
func (s *Store) StopSession(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, false
	}

	if session.Active {
		session.Active = false
		session.LastUpdatedAt = time.Now()
	}
	s.closeChannel(id)

	if s.metricsManager != nil {
		s.metricsManager.GaugeActiveSessions.Set(float64(s.activeCount()))
	}

	return session.snapshot(), true
}

// BindChannel attaches a live connection to the session, closing any channel
// bound before it. Binding fails only for unknown session ids.
func (s *Store) BindChannel(id string, ch Channel) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return false
	}
	s.closeChannel(id)
	s.channels[id] = ch
	return true
}

// Channel returns the connection currently bound to the session.
func (s *Store) Channel(id string) (Channel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.channels[id]
	return ch, ok
}

// StopAll deactivates every session and closes all bound channels. Used on
// graceful shutdown.
func (s *Store) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, session := range s.sessions {
		if session.Active {
			session.Active = false
			session.LastUpdatedAt = now
		}
		s.closeChannel(id)
	}

	if s.metricsManager != nil {
		s.metricsManager.GaugeActiveSessions.Set(0)
	}
}

// Len returns the total number of tracked sessions, stopped ones included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// ActiveCount returns the number of currently active sessions.
func (s *Store) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeCount()
}

func (s *Store) activeCount() int {
	var count int
	for _, session := range s.sessions {
		if session.Active {
			count++
		}
	}
	return count
}

// evictOldestInactive removes the least recently updated inactive session.
// Active sessions are never evicted, so a store full of live streams is
// allowed to exceed its cap.
func (s *Store) evictOldestInactive() {
	var oldest *Session
	for _, session := range s.sessions {
		if session.Active {
			continue
		}
		if oldest == nil || session.LastUpdatedAt.Before(oldest.LastUpdatedAt) {
			oldest = session
		}
	}

	if oldest == nil {
		log.Warnf("session store over capacity [%d] with all sessions active", len(s.sessions))
		return
	}

	s.closeChannel(oldest.ID)
	delete(s.sessions, oldest.ID)
	log.Debugf("evicted inactive session [%s], last updated at %s", oldest.ID, oldest.LastUpdatedAt)

	if s.metricsManager != nil {
		s.metricsManager.CounterSessionsEvicted.Inc()
	}
}

func (s *Store) closeChannel(id string) {
	ch, ok := s.channels[id]
	if !ok {
		return
	}
	delete(s.channels, id)
	if err := ch.Close(); err != nil {
		log.Errorf("close channel for session [%s]: %s", id, err)
	}
}
