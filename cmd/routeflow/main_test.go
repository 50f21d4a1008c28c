package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const testManifest = `
processors:
  - id: P1
    tags:
      - topicName: order.created
        processorName: handler
        destinationName: q1
  - id: P2
    tags:
      - topicName: order.created
  - id: P3
    subscriptions: [t1]
`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "routes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestBuildCommandJSON(t *testing.T) {
	path := writeManifest(t, testManifest)

	out, _, err := execute(t, "build", "--manifest", path)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"order.created": [["handler","q1"],["P2",null]],
		"t1": [["P3",null]]
	}`, out)
}

func TestBuildCommandYAMLToFile(t *testing.T) {
	path := writeManifest(t, testManifest)
	output := filepath.Join(t.TempDir(), "table.yaml")

	out, _, err := execute(t, "build", "-m", path, "--format", "yaml", "--output", output)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 3 routes for 2 topics")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	var decoded map[string][][]any
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, [][]any{{"handler", "q1"}, {"P2", nil}}, decoded["order.created"])
}

func TestBuildCommandErrors(t *testing.T) {
	path := writeManifest(t, "processors:\n  - id: P6\n    subscriptions: [12345]\n")

	_, _, err := execute(t, "build", "-m", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "topic subscriber configuration is invalid")
	assert.Contains(t, err.Error(), "[12345]")

	_, _, err = execute(t, "build", "-m", path, "--format", "toml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")

	_, _, err = execute(t, "build", "-m", path, "--log-level", "loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestBuildCommandStrict(t *testing.T) {
	path := writeManifest(t, "processors:\n  - id: idle\n")

	_, _, err := execute(t, "build", "-m", path)
	require.NoError(t, err)

	_, _, err = execute(t, "build", "-m", path, "--strict")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not declare any route")
}

func TestLookupCommand(t *testing.T) {
	path := writeManifest(t, testManifest)

	out, _, err := execute(t, "lookup", "-m", path, "--topic", "order.created", "--workers", "2")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "handler")
	assert.Contains(t, lines[1], "q1")
	assert.Contains(t, lines[2], "P2")
	assert.Contains(t, lines[2], "<default>")

	_, _, err = execute(t, "lookup", "-m", path, "--topic", "unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no routes for topic "unknown"`)

	_, _, err = execute(t, "lookup", "-m", path)
	require.Error(t, err)
}

func TestBuildCommandLogs(t *testing.T) {
	path := writeManifest(t, testManifest)

	_, stderr, err := execute(t, "build", "-m", path, "--log-level", "info")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Route table built")
	assert.Contains(t, stderr, "build_id")
}
