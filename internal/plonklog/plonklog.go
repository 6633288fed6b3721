// Package plonklog centralizes the zap logger construction used across
// cmd/plonk and internal/driver, the structured-logging ambient stack
// codenerd carries via zap.Logger.
package plonklog

import "go.uber.org/zap"

// New returns a development logger (human-readable, debug-level) when
// verbose is set, otherwise a quieter production config with info level
// and above.
func New(verbose bool) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.DisableStacktrace = true
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}
