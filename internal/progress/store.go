package progress

// Key identifies one learner's progress on one activity.
type Key struct {
	LearnerID  string
	ActivityID string
}

// ActivityProgress is the mutable per-activity state of a learner.
type ActivityProgress struct {
	CurrentProgress float64
	Attempts        int
	Initialized     bool
	Completed       bool
	LastEvent       string
}

// Store owns all progress records and each learner's current activity for
// one simulation run. Records are created lazily and never deleted.
// A Store is not safe for concurrent use.
type Store struct {
	progress map[Key]*ActivityProgress
	current  map[string]string
}

// NewStore returns an empty progress store.
func NewStore() *Store {
	return &Store{
		progress: make(map[Key]*ActivityProgress),
		current:  make(map[string]string),
	}
}

// Get returns the record for (learnerID, activityID), creating it on first
// access.
func (s *Store) Get(learnerID, activityID string) *ActivityProgress {
	k := Key{LearnerID: learnerID, ActivityID: activityID}
	ap, ok := s.progress[k]
	if !ok {
		ap = &ActivityProgress{}
		s.progress[k] = ap
	}
	return ap
}

// Peek returns a copy of the record without creating it.
func (s *Store) Peek(learnerID, activityID string) (ActivityProgress, bool) {
	ap, ok := s.progress[Key{LearnerID: learnerID, ActivityID: activityID}]
	if !ok {
		return ActivityProgress{}, false
	}
	return *ap, true
}

// Current returns the learner's in-progress activity, if any.
func (s *Store) Current(learnerID string) (string, bool) {
	id, ok := s.current[learnerID]
	return id, ok
}

// SetCurrent marks activityID as the learner's in-progress activity.
func (s *Store) SetCurrent(learnerID, activityID string) {
	s.current[learnerID] = activityID
}

// ClearCurrent forgets the learner's in-progress activity.
func (s *Store) ClearCurrent(learnerID string) {
	delete(s.current, learnerID)
}

// RecordTrace notes the outcome of a sequenced pass: the activity is now
// initialized and lastEvent is the trace's final event.
func (s *Store) RecordTrace(learnerID, activityID, lastEvent string) {
	ap := s.Get(learnerID, activityID)
	ap.Initialized = true
	ap.LastEvent = lastEvent
}

// Learner returns copies of every record held for the learner, keyed by
// activity id.
func (s *Store) Learner(learnerID string) map[string]ActivityProgress {
	out := make(map[string]ActivityProgress)
	for k, ap := range s.progress {
		if k.LearnerID == learnerID {
			out[k.ActivityID] = *ap
		}
	}
	return out
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.progress)
}
