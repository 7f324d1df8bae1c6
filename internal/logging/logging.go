// Package logging builds the process logger from the fixed
// configuration file, conf/logging.json. The file holds a zap
// configuration under a "logging" key; when the file is absent the
// production defaults apply.
package logging

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"
)

const ConfigPath = "conf/logging.json"

func Setup() (*zap.Logger, error) {
	return setup(ConfigPath)
}

func setup(path string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()

	data, err := os.ReadFile(path) // #nosec G304 - fixed well-known path
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return cfg.Build()
	case err != nil:
		return nil, fmt.Errorf("failed to read logging configuration %s: %w", path, err)
	}

	var wrapper struct {
		Logging json.RawMessage `json:"logging"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("failed to parse logging configuration %s: %w", path, err)
	}
	if wrapper.Logging != nil {
		if err := json.Unmarshal(wrapper.Logging, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse logging configuration %s: %w", path, err)
		}
	}
	return cfg.Build()
}
