package config

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"

	"go.viam.com/e2edrive/logging"
)

// Read reads a scenario from the given file. Environment variables such as ${SPEED} are
// substituted before decoding.
func Read(ctx context.Context, filePath string, logger logging.Logger) (*Scenario, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read scenario %q", filePath)
	}

	return FromReader(ctx, filePath, bytes.NewReader(buf), logger)
}

// FromReader reads a scenario from the given reader and specifies where, if applicable, the file
// the reader originated from.
func FromReader(ctx context.Context, originalPath string, r io.Reader, logger logging.Logger) (*Scenario, error) {
	scenario := &Scenario{ConfigFilePath: originalPath}
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(scenario); err != nil {
		return nil, errors.Wrap(err, "failed to decode Scenario from json")
	}
	if err := scenario.Ensure(); err != nil {
		return nil, err
	}
	if logger != nil {
		logger.CDebugw(ctx, "scenario loaded",
			"path", originalPath, "name", scenario.Name, "tick_hz", scenario.TickHz, "actors", len(scenario.Actors))
	}
	UpdateFileConfigDebug(scenario.Debug)
	return scenario, nil
}
