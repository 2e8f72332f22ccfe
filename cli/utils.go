package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap/zapcore"

	"go.viam.com/e2edrive/config"
	"go.viam.com/e2edrive/logging"
)

// printf prints a message with no prefix.
func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}

// infof prints a message prefixed with a bold cyan "Info: ".
func infof(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	color.New(color.Bold, color.FgCyan).Fprint(w, "Info: ")
	printf(w, format, a...)
}

// warningf prints a message prefixed with a bold yellow "Warning: ".
func warningf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	color.New(color.Bold, color.FgYellow).Fprint(w, "Warning: ")
	printf(w, format, a...)
}

// newLogger builds the command's logger. Log lines go to the app's error writer and, when
// --log-file is set, to a rotating file.
func newLogger(cCtx *cli.Context, name string) logging.Logger {
	logger := logging.NewBlankLogger(name)
	logger.AddAppender(logging.NewWriterAppender(zapcore.AddSync(cCtx.App.ErrWriter)))
	if path := cCtx.String(flagLogFile); path != "" {
		logger.AddAppender(logging.NewFileAppender(logging.FileAppenderConfig{Filename: path, MaxBackups: 3}))
	}

	debug := cCtx.Bool(flagDebug)
	if !debug {
		logger.SetLevel(logging.INFO)
	}
	config.InitLoggingSettings(logger, debug)
	logging.ReplaceGlobal(logger)
	return logger
}

// parseFloats parses a comma separated list of exactly n numbers, such as "1.5,2,0".
func parseFloats(raw string, n int) ([]float64, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != n {
		return nil, errors.Errorf("%q must have %d comma separated values", raw, n)
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid value %q", p)
		}
		out[i] = v
	}
	return out, nil
}

// ensureDir creates dir if needed and checks that it is a directory.
func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return errors.Wrapf(err, "could not create directory: %s", dir)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return errors.Wrapf(err, "could not stat directory: %s", dir)
	}
	if !info.IsDir() {
		return errors.Errorf("resolved path is not a directory: %s", dir)
	}
	return nil
}
