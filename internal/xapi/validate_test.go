package xapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/learnsim/internal/catalog"
)

func TestValidator_AcceptsSerializedStatements(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	s := testSerializer(catalog.DefaultVerbs())
	trace, act := passedTrace(t)
	var stmts []Statement
	for _, in := range trace {
		stmts = append(stmts, s.Statement(in, &act, testLearner(), catalog.DemoCourse(), "6a2f41a0-0000-4000-8000-00000000000a"))
	}
	assert.NoError(t, v.ValidateAll(stmts))
}

func TestValidator_Rejects(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	s := testSerializer(catalog.DefaultVerbs())
	trace, act := passedTrace(t)
	good := s.Statement(trace[0], &act, testLearner(), catalog.DemoCourse(), "")

	tests := []struct {
		name   string
		mutate func(*Statement)
	}{
		{"bad mailbox", func(st *Statement) { st.Actor.Mbox = "average.1@example.com" }},
		{"relative verb", func(st *Statement) { st.Verb.ID = "initialized" }},
		{"bad version", func(st *Statement) { st.Version = "2.0.0" }},
		{"scaled above one", func(st *Statement) { st.Result = &Result{Score: &Score{Scaled: 1.5}} }},
		{"bad duration", func(st *Statement) { st.Result = &Result{Duration: "45 minutes"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := good
			tt.mutate(&st)
			err := v.ValidateAll([]Statement{good, st})
			require.Error(t, err)
			var se *StatementError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, 1, se.Index)
		})
	}
}
