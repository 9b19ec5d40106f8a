package xapi

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/learnsim/internal/catalog"
	"github.com/abhisek/learnsim/internal/events"
	"github.com/abhisek/learnsim/internal/profile"
	"github.com/abhisek/learnsim/internal/progress"
	"github.com/abhisek/learnsim/internal/rng"
	"github.com/abhisek/learnsim/internal/session"
)

var t0 = time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)

func testSerializer(verbs *catalog.VerbCatalog) *Serializer {
	return NewSerializer(DefaultConfig(), verbs, rng.New(7))
}

func testLearner() profile.LearnerProfile {
	return profile.LearnerProfile{
		ID:      "4f1c2a8e-0000-4000-8000-000000000001",
		Email:   "average.1@example.com",
		Persona: profile.PersonaAverage,
	}
}

func passedTrace(t *testing.T) ([]events.Interaction, catalog.Activity) {
	t.Helper()
	act, ok := catalog.DemoCourse().Activity("dl-101")
	require.True(t, ok)
	trace, err := events.Sequence(t0, progress.Pass{
		Activity:     act,
		Minutes:      40,
		FirstAttempt: true,
		Progress:     1,
		Scored:       true,
		Attempt:      1,
		Score:        84,
		Passed:       true,
		Completed:    true,
		Rating:       4,
	})
	require.NoError(t, err)
	return trace, act
}

func TestStatement_Fields(t *testing.T) {
	s := testSerializer(catalog.DefaultVerbs())
	course := catalog.DemoCourse()
	trace, act := passedTrace(t)

	st := s.Statement(trace[0], &act, testLearner(), course, "6a2f41a0-0000-4000-8000-00000000000a")

	assert.Len(t, st.ID, 36)
	assert.Equal(t, "mailto:average.1@example.com", st.Actor.Mbox)
	assert.Equal(t, "average.1", st.Actor.Name)
	assert.Equal(t, DefaultVersion, st.Version)
	assert.Equal(t, t0, st.Timestamp)

	v, ok := catalog.DefaultVerbs().Lookup("initialized")
	require.True(t, ok)
	assert.Equal(t, v.ID, st.Verb.ID)

	assert.Equal(t, "Activity", st.Object.ObjectType)
	require.NotNil(t, st.Object.Definition)
	assert.Equal(t, act.ID, st.Object.Definition.Extensions[s.ActivityExtension()])
	assert.True(t, strings.HasPrefix(st.Object.ID, "https://"))

	require.NotNil(t, st.Context)
	assert.Equal(t, "6a2f41a0-0000-4000-8000-00000000000a", st.Context.Registration)
	assert.Equal(t, "mailto:instructor@example.com", st.Context.Instructor.Mbox)
	require.Len(t, st.Context.ContextActivities.Parent, 1)
	assert.Equal(t, course.ID, st.Context.ContextActivities.Parent[0].ID)
	assert.Equal(t, course.ID, st.Context.Extensions[s.CourseExtension()])
}

func TestStatement_CourseObjectWithoutActivity(t *testing.T) {
	s := testSerializer(catalog.DefaultVerbs())
	course := catalog.DemoCourse()

	st := s.Statement(events.Interaction{Kind: events.KindSearched, Timestamp: t0}, nil, testLearner(), course, "")

	assert.Equal(t, course.ID, st.Object.ID)
	require.NotNil(t, st.Object.Definition)
	assert.Equal(t, "http://adlnet.gov/expapi/activities/course", st.Object.Definition.Type)
}

func TestStatement_ContextAlwaysStamped(t *testing.T) {
	s := NewSerializer(Config{}, catalog.DefaultVerbs(), rng.New(7))
	act := catalog.DemoCourse().Activities()[0]

	st := s.Statement(events.Interaction{Kind: events.KindInitialized, Timestamp: t0}, &act, testLearner(), nil, "")

	require.NotNil(t, st.Context)
	require.NotNil(t, st.Context.Instructor)
	assert.Equal(t, "mailto:"+DefaultConfig().InstructorMailbox, st.Context.Instructor.Mbox)
	assert.Equal(t, "unknown", st.Context.Extensions[s.CourseExtension()])
	require.Len(t, st.Context.ContextActivities.Parent, 1)
	assert.Equal(t, DefaultConfig().IRIBase+"/courses/unknown", st.Context.ContextActivities.Parent[0].ID)

	v, err := NewValidator()
	require.NoError(t, err)
	assert.NoError(t, v.Validate(st))
}

func TestResolveVerb_Fallback(t *testing.T) {
	s := testSerializer(catalog.NewVerbCatalog(nil))

	v := s.ResolveVerb(events.KindPrescribed)
	assert.Equal(t, "http://adlnet.gov/expapi/verbs/prescribed", v.ID)
	assert.Equal(t, "prescribed", v.PrefLabel)
	assert.NotEmpty(t, v.Definition)

	// The fallback IRI still maps back to its kind.
	in, err := s.Interaction(Statement{Verb: Verb{ID: v.ID}})
	require.NoError(t, err)
	assert.Equal(t, events.KindPrescribed, in.Kind)
}

func TestInteraction_RoundTrip(t *testing.T) {
	s := testSerializer(catalog.DefaultVerbs())
	trace, act := passedTrace(t)

	for _, in := range trace {
		st := s.Statement(in, &act, testLearner(), catalog.DemoCourse(), "")

		// Go through JSON so extension values come back as decoded numbers.
		raw, err := json.Marshal(st)
		require.NoError(t, err)
		var decoded Statement
		require.NoError(t, json.Unmarshal(raw, &decoded))

		got, err := s.Interaction(decoded)
		require.NoError(t, err, in.Kind)
		assert.Equal(t, in, got, in.Kind)
	}
}

func TestInteraction_UnknownVerb(t *testing.T) {
	s := testSerializer(catalog.DefaultVerbs())
	_, err := s.Interaction(Statement{Verb: Verb{ID: "http://example.com/verbs/danced"}})
	assert.Error(t, err)
}

func TestSession_SortedByTimestamp(t *testing.T) {
	s := testSerializer(catalog.DefaultVerbs())
	trace, act := passedTrace(t)
	late, err := events.Sequence(t0.Add(2*time.Hour), progress.Pass{Activity: act, Minutes: 20, Progress: 0.4})
	require.NoError(t, err)

	sess := session.LearningSession{
		ID: "6a2f41a0-0000-4000-8000-00000000000b",
		Activities: []session.SessionActivity{
			{Activity: act, Interactions: late},
			{Activity: act, Interactions: trace},
		},
	}
	stmts := s.Session(testLearner(), catalog.DemoCourse(), sess)

	require.Len(t, stmts, len(trace)+len(late))
	for i := 1; i < len(stmts); i++ {
		assert.False(t, stmts[i].Timestamp.Before(stmts[i-1].Timestamp))
	}
	for _, st := range stmts {
		assert.Equal(t, sess.ID, st.Context.Registration)
	}
}

func TestStatement_DeterministicIDs(t *testing.T) {
	trace, act := passedTrace(t)
	a := NewSerializer(DefaultConfig(), catalog.DefaultVerbs(), rng.New(99))
	b := NewSerializer(DefaultConfig(), catalog.DefaultVerbs(), rng.New(99))

	for _, in := range trace {
		assert.Equal(t,
			a.Statement(in, &act, testLearner(), nil, "").ID,
			b.Statement(in, &act, testLearner(), nil, "").ID)
	}
}
