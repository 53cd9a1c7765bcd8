package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	t.Setenv("EMBEDDINGS_PROVIDER", "none")
	t.Setenv("REDIS_URL", "")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("METRICS_ADDR", "")
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestEvaluateCommand_PrintsReport(t *testing.T) {
	dir := t.TempDir()
	resume := writeFile(t, dir, "resume.txt", "Skills\nGo, Python, Docker, Kubernetes\nExperience\nBuilt Go microservices on Kubernetes")
	jd := writeFile(t, dir, "jd.txt", "Skills\nGo, Kubernetes, Terraform\nExperience\nBuild Go microservices")

	out, err := execute(t, "evaluate", "--resume", resume, "--jd", jd, "--depth", "deep")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got["evaluation_id"], 26)
	assert.Equal(t, "deep", got["depth"])
	verdict, ok := got["verdict"].(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, verdict["tier"])
	assert.Contains(t, verdict["keyword_gap_summary"], "terraform")
}

func TestEvaluateCommand_SectionsFile(t *testing.T) {
	dir := t.TempDir()
	resume := writeFile(t, dir, "resume.txt", "Go developer")
	jd := writeFile(t, dir, "jd.txt", "Go developer")
	secs := writeFile(t, dir, "secs.json", `{"skills":["Go"],"hobbies":["chess"]}`)

	out, err := execute(t, "evaluate", "-r", resume, "-j", jd, "--depth", "comprehensive",
		"--resume-sections", secs, "--jd-sections", secs, "--compact")
	require.NoError(t, err)

	var got struct {
		Match struct {
			SkillScore *float64 `json:"skill_score"`
		} `json:"match"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.NotNil(t, got.Match.SkillScore)
	assert.InDelta(t, 100, *got.Match.SkillScore, 1e-9)
}

func TestEvaluateCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	resume := writeFile(t, dir, "resume.txt", "Go")

	_, err := execute(t, "evaluate", "--resume", resume, "--jd", filepath.Join(dir, "missing.txt"))
	require.Error(t, err)

	_, err = execute(t, "evaluate", "--resume", resume, "--jd", resume, "--depth", "exhaustive")
	require.Error(t, err)

	bad := writeFile(t, dir, "bad.json", "{")
	_, err = execute(t, "evaluate", "--resume", resume, "--jd", resume, "--jd-sections", bad)
	require.Error(t, err)
}

func TestBackendsCommand(t *testing.T) {
	out, err := execute(t, "backends")
	require.NoError(t, err)
	assert.Contains(t, out, `"embeddings_provider": "none"`)
	assert.Contains(t, out, `"name": "tfidf"`)
	assert.Contains(t, out, `"state": "closed"`)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "matcher version: unknown\n", out)
}

func TestEnvFileFlag(t *testing.T) {
	_, err := execute(t, "--env-file", filepath.Join(t.TempDir(), "nope.env"), "backends")
	require.Error(t, err)
}
