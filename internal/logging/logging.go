// Package logging builds the process logger from configuration. The
// logger is injected at the boundary; no package keeps a global one.
package logging

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// New returns a logger at the given level with the given format
// ("json" or "pretty").
func New(level, format string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	logger := logrus.New()
	logger.SetLevel(lvl)
	switch format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "pretty":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	return logger, nil
}
