package cmd

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/learnsim/internal/config"
	"github.com/abhisek/learnsim/internal/xapi"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

func TestGenerateThenQuery(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "learnsim.db")
	export := filepath.Join(dir, "statements.json")

	execute(t, "generate", "--db", db, "--learners", "10", "--weeks", "2", "--seed", "9",
		"--out", export, "--quiet", "--log-level", "error")

	raw := execute(t, "statements", "--db", db, "--limit", "5", "--json")
	var stmts []xapi.Statement
	require.NoError(t, json.Unmarshal([]byte(raw), &stmts))
	assert.Len(t, stmts, 5)

	stats := execute(t, "stats", "--db", db)
	assert.Contains(t, stats, "succeeded")
	assert.Contains(t, stats, "launched")

	execute(t, "reset", "--db", db, "--force")
	raw = execute(t, "statements", "--db", db, "--json", "--limit", "0")
	assert.JSONEq(t, "null", raw)
}

func TestResetRequiresForce(t *testing.T) {
	rootCmd.SetArgs([]string{"reset", "--db", filepath.Join(t.TempDir(), "x.db"), "--force=false"})
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	assert.Error(t, rootCmd.Execute())
}

func TestVerbsCommand(t *testing.T) {
	out := execute(t, "verbs")
	assert.Contains(t, out, "http://adlnet.gov/expapi/verbs/prescribed")
	assert.Contains(t, out, "fallback")
}

func TestVerbIRI(t *testing.T) {
	_, verbs, err := loadCatalogs(mustDefaultConfig(t))
	require.NoError(t, err)

	assert.Equal(t, "http://example.com/custom", verbIRI("http://example.com/custom", verbs))
	assert.Equal(t, "http://adlnet.gov/expapi/verbs/prescribed", verbIRI("prescribed", verbs))
	v, ok := verbs.Lookup("completed")
	require.True(t, ok)
	assert.Equal(t, v.ID, verbIRI("Completed", verbs))
}

func TestParseTimeFlag(t *testing.T) {
	_, err := parseTimeFlag("2025-01-06")
	assert.NoError(t, err)
	_, err = parseTimeFlag("2025-01-06T09:00:00Z")
	assert.NoError(t, err)
	_, err = parseTimeFlag("yesterday")
	assert.Error(t, err)
}

func mustDefaultConfig(t *testing.T) *config.Config {
	t.Helper()
	return config.Default()
}
