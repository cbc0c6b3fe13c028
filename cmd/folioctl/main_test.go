// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/taibuivan/folio/internal/platform/constants"
)

const export = `{"_id":"65f1c2a9b3e4d5f6a7b8c9d0","author":"author-1","title":"One","content":[{"ops":[{"insert":"first page\n"}]},{"ops":[{"insert":"second\n"}]}]}
{"_id":"65f1c2a9b3e4d5f6a7b8c9d1","author":"author-2","title":"Two","pages":[{"content":{"ops":[{"insert":"legacy words here\n"}]}}]}
`

// useSQLite points configuration at a fresh database file.
func useSQLite(t *testing.T) {
	t.Helper()
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "folio.db"))
	t.Setenv("REDIS_URL", "")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), err
}

func decode(t *testing.T, out string) map[string]any {
	t.Helper()
	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &report), out)
	return report
}

func TestJobs(t *testing.T) {
	useSQLite(t)

	exportPath := filepath.Join(t.TempDir(), "export.ndjson")
	require.NoError(t, os.WriteFile(exportPath, []byte(export), 0o600))

	out, err := run(t, "import-legacy", "--file", exportPath, "-o", "json")
	require.NoError(t, err)
	assert.EqualValues(t, 2, decode(t, out)["imported"])

	out, err = run(t, "migrate-layout", "-o", "json")
	require.NoError(t, err)
	report := decode(t, out)
	assert.Equal(t, true, report["dry_run"])
	assert.EqualValues(t, 0, report["pages_written"])

	out, err = run(t, "migrate-layout", "--apply", "--concurrency", "2", "-o", "json")
	require.NoError(t, err)
	report = decode(t, out)
	assert.EqualValues(t, 2, report["migrated"])
	assert.EqualValues(t, 3, report["pages_written"])

	out, err = run(t, "migrate-layout", "--apply", "-o", "json")
	require.NoError(t, err)
	assert.EqualValues(t, 0, decode(t, out)["scanned"], "nothing left to migrate")

	out, err = run(t, "reconcile", "--apply")
	require.NoError(t, err)
	var yamlReport map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &yamlReport))
	assert.Equal(t, 2, yamlReport["scanned"])
	assert.Equal(t, 0, yamlReport["failed"])

	out, err = run(t, "import-legacy", "--file", exportPath, "-o", "json")
	require.NoError(t, err)
	assert.EqualValues(t, 2, decode(t, out)["skipped"])
}

func TestFlagValidation(t *testing.T) {
	useSQLite(t)

	tests := []struct {
		name string
		args []string
	}{
		{"work_id_not_uuid", []string{"migrate-layout", "--work-id", "65f1c2a9"}},
		{"zero_concurrency", []string{"reconcile", "--concurrency", "0"}},
		{"unknown_output", []string{"reconcile", "-o", "xml"}},
		{"schema_on_sqlite", []string{"schema", "status"}},
		{"missing_export", []string{"import-legacy", "--file", filepath.Join(t.TempDir(), "missing.ndjson")}},
		{"token_without_key", []string{"token", "--user", "u1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "folioctl "+constants.AppVersion))
}

func TestWriteOutput(t *testing.T) {
	data := map[string]int{"migrated": 2}

	var buffer bytes.Buffer
	require.NoError(t, writeOutput(&buffer, outputYAML, data))
	assert.Equal(t, "migrated: 2\n", buffer.String())

	buffer.Reset()
	require.NoError(t, writeOutput(&buffer, outputJSON, data))
	assert.JSONEq(t, `{"migrated":2}`, buffer.String())

	_, err := parseOutput("toml")
	assert.Error(t, err)
}
