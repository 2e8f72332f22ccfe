package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
	"go.viam.com/test"
)

type nopSyncer struct {
	*bytes.Buffer
}

func (nopSyncer) Sync() error { return nil }

func newBufferLogger(name string, level Level) (*impl, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return &impl{name, NewAtomicLevelAt(level), true, []Appender{NewWriterAppender(nopSyncer{buf})}}, buf
}

// assertLogMatches fuzzy matches a console log line. It checks the shape of the timestamp, the
// level, the file name (but not the line number), the message and, when present, the JSON fields.
func assertLogMatches(t *testing.T, actual *bytes.Buffer, expected string) {
	t.Helper()

	output, err := actual.ReadString('\n')
	test.That(t, err, test.ShouldBeNil)

	actualParts := strings.Split(strings.TrimSuffix(output, "\n"), "\t")
	expectedParts := strings.Split(expected, "\t")
	test.That(t, len(actualParts), test.ShouldEqual, len(expectedParts))
	test.That(t, len(actualParts[0]), test.ShouldEqual, len(expectedParts[0]))
	test.That(t, actualParts[1], test.ShouldEqual, expectedParts[1])
	test.That(t, actualParts[2], test.ShouldEqual, expectedParts[2])

	actualFilename, actualLineNumber, found := strings.Cut(actualParts[3], ":")
	test.That(t, found, test.ShouldBeTrue)
	expectedFilename, _, found := strings.Cut(expectedParts[3], ":")
	test.That(t, found, test.ShouldBeTrue)
	test.That(t, actualFilename, test.ShouldEqual, expectedFilename)
	_, err = strconv.Atoi(actualLineNumber)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, actualParts[4], test.ShouldEqual, expectedParts[4])
	if len(actualParts) == 5 {
		return
	}

	expectedMap := make(map[string]any)
	test.That(t, json.Unmarshal([]byte(expectedParts[5]), &expectedMap), test.ShouldBeNil)
	actualMap := make(map[string]any)
	test.That(t, json.Unmarshal([]byte(actualParts[5]), &actualMap), test.ShouldBeNil)
	test.That(t, actualMap, test.ShouldResemble, expectedMap)
}

func TestConsoleOutputFormat(t *testing.T) {
	logger, buf := newBufferLogger("impl", DEBUG)

	logger.Info("impl Info log")
	assertLogMatches(t, buf, "2023-10-30T09:12:09.459Z\tINFO\timpl\tlogging/impl_test.go:65\timpl Info log")

	logger.Debugf("impl %s log", "Debugf")
	assertLogMatches(t, buf, "2023-10-30T09:12:09.459Z\tDEBUG\timpl\tlogging/impl_test.go:68\timpl Debugf log")

	logger.Warnw("impl logw", "agent", "ego", "speed", 4.5)
	assertLogMatches(t, buf,
		`2023-10-30T09:12:09.459Z	WARN	impl	logging/impl_test.go:71	impl logw	{"agent":"ego","speed":4.5}`)

	logger.Errorw("unpaired", "key")
	assertLogMatches(t, buf,
		`2023-10-30T09:12:09.459Z	ERROR	impl	logging/impl_test.go:75	unpaired	{"key":"unpaired log key"}`)
}

func TestLevels(t *testing.T) {
	logger, buf := newBufferLogger("levels", WARN)

	logger.Debug("hidden")
	logger.Info("hidden")
	test.That(t, buf.Len(), test.ShouldEqual, 0)

	logger.Warn("shown")
	test.That(t, buf.String(), test.ShouldContainSubstring, "shown")

	buf.Reset()
	logger.SetLevel(DEBUG)
	test.That(t, logger.GetLevel(), test.ShouldEqual, DEBUG)
	logger.Debug("now shown")
	test.That(t, buf.String(), test.ShouldContainSubstring, "now shown")
}

func TestContextDebugMode(t *testing.T) {
	logger, buf := newBufferLogger("ctx", INFO)
	ctx := context.Background()

	logger.CDebugf(ctx, "hidden %d", 1)
	test.That(t, buf.Len(), test.ShouldEqual, 0)

	dbgCtx := EnableDebugMode(ctx, "")
	test.That(t, IsDebugMode(dbgCtx), test.ShouldBeTrue)
	test.That(t, GetName(dbgCtx), test.ShouldNotBeEmpty)
	logger.CDebugf(dbgCtx, "shown %d", 2)
	test.That(t, buf.String(), test.ShouldContainSubstring, "shown 2")

	test.That(t, GetName(EnableDebugMode(ctx, "tick")), test.ShouldEqual, "tick")
}

func TestSublogger(t *testing.T) {
	logger, buf := newBufferLogger("control", DEBUG)
	sub := logger.Sublogger("waypoint")
	sub.Info("hello")
	test.That(t, buf.String(), test.ShouldContainSubstring, "\tcontrol.waypoint\t")

	root := NewBlankLogger("")
	test.That(t, root.Sublogger("a").(*impl).name, test.ShouldEqual, "a")
}

func TestObservedTestLogger(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.Infow("reached goal", "agent", "ego")
	logger.Debug("tick")

	test.That(t, logs.Len(), test.ShouldEqual, 2)
	entries := logs.FilterMessage("reached goal").All()
	test.That(t, entries, test.ShouldHaveLength, 1)
	test.That(t, entries[0].Level, test.ShouldEqual, zapcore.InfoLevel)
	test.That(t, entries[0].ContextMap()["agent"], test.ShouldEqual, "ego")
}

func TestLevelFromString(t *testing.T) {
	for _, tc := range []struct {
		in       string
		expected Level
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"warning", WARN},
		{"Error", ERROR},
	} {
		level, err := LevelFromString(tc.in)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, level, test.ShouldEqual, tc.expected)
	}

	_, err := LevelFromString("verbose")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestFileAppender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drive.log")
	logger := NewBlankLogger("file")
	logger.AddAppender(NewFileAppender(FileAppenderConfig{Filename: path}))
	logger.Info("to file")
	test.That(t, logger.Sync(), test.ShouldBeNil)

	written, err := os.ReadFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(written), test.ShouldContainSubstring, "to file")
}
