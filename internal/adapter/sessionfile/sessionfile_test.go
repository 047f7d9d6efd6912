package sessionfile

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climbr-etl/internal/domain"
)

const kanataLog = `location: Altitude Kanata
style: indoor bouldering
date: 2022-01-08
time:
  start: 6:30 PM
  end: 9 PM
counter:
  - {grade: V3/V4, flash: 1, redpoint: 2, repeat: 0, attempts: 3}
`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestReader_ReadSessions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "2022-01-15.yml", kanataLog)
	writeFile(t, dir, "2022-01-08.yaml", kanataLog)
	writeFile(t, dir, "notes.txt", "not a log")
	writeFile(t, dir, ".2022-01-01.yaml.swp", "junk")
	writeFile(t, dir, "broken.yaml", "location: [unclosed")
	writeFile(t, dir, "empty.yaml", "")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "templates.yaml"), 0o755))

	logs, failures, err := NewReader(dir, discardLogger()).ReadSessions(context.Background())
	require.NoError(t, err)

	require.Len(t, logs, 2)
	assert.Equal(t, filepath.Join(dir, "2022-01-08.yaml"), logs[0].Path)
	assert.Equal(t, filepath.Join(dir, "2022-01-15.yml"), logs[1].Path)
	assert.Equal(t, "Altitude Kanata", logs[0].Fields["location"])

	require.Len(t, failures, 2)
	var readErr *ReadError
	require.ErrorAs(t, failures[0], &readErr)
	assert.Equal(t, filepath.Join(dir, "broken.yaml"), readErr.Path)
	require.ErrorAs(t, failures[1], &readErr)
	assert.Contains(t, readErr.Error(), "empty session log")
}

func TestReader_DecodedLogValidates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "2022-01-08.yaml", kanataLog)

	logs, _, err := NewReader(dir, discardLogger()).ReadSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, logs, 1)

	log, err := domain.ValidateSessionLog(logs[0].Fields)
	require.NoError(t, err)
	assert.Equal(t, "2022-01-08", log.Date, "unquoted YAML dates are accepted")
	assert.Equal(t, "6:30 PM", log.Start)
}

func TestReader_MissingDir(t *testing.T) {
	_, _, err := NewReader(filepath.Join(t.TempDir(), "missing"), discardLogger()).ReadSessions(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReader_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "2022-01-08.yaml", kanataLog)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewReader(dir, discardLogger()).ReadSessions(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTemplateName(t *testing.T) {
	tests := []struct {
		alias, override, want string
	}{
		{"", "", "2022-01-08.yaml"},
		{"kanata", "", "2022-01-08.yaml"},
		{"Altitude Kanata", "", "2022-01-08.yaml"},
		{"coyote", "", "2022-01-08_coyote.yaml"},
		{"hogs back", "", "2022-01-08_hogs_back.yaml"},
		{"coyote", "birthday.yml", "birthday.yaml"},
		{"coyote", "birthday", "birthday.yaml"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TemplateName("2022-01-08", tt.alias, tt.override), tt)
	}
}

func TestWriteTemplate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "input")
	loc, err := domain.FindLocation("Calabogie")
	require.NoError(t, err)
	tmpl := domain.NewSessionTemplate(loc, time.Date(2022, 6, 18, 0, 0, 0, 0, time.UTC), []string{"Alex"}, nil)

	path, err := WriteTemplate(dir, "2022-06-18_calabogie.yaml", tmpl, false)
	require.NoError(t, err)

	fields, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Calabogie", fields["location"])
	assert.Equal(t, "outdoor bouldering", fields["style"])

	_, err = WriteTemplate(dir, "2022-06-18_calabogie.yaml", tmpl, false)
	assert.ErrorIs(t, err, os.ErrExist, "existing logs are not overwritten")

	_, err = WriteTemplate(dir, "2022-06-18_calabogie.yaml", tmpl, true)
	assert.NoError(t, err)
}
