package build

import (
	"fmt"
	"os"
	"path/filepath"

	env "github.com/xyproto/env/v2"
)

// CachePath returns the directory plonk caches its own built agent library
// under, directly adapting flapc's dependencies.go GetCachePath (same
// XDG_CACHE_HOME-first, ~/.cache fallback convention), repurposed from
// caching fetched Git dependencies to caching the one artifact plonk itself
// needs to build before any reload iteration can run: cmd/plonk-agent.
func CachePath() (string, error) {
	if xdgCache := env.Str("XDG_CACHE_HOME"); xdgCache != "" {
		return filepath.Join(xdgCache, "plonk"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".cache", "plonk"), nil
}

// AgentCachePath returns the path the built Agent Library for the given
// platform/extension should live at, e.g.
// "~/.cache/plonk/agent/libplonk_agent.so".
func AgentCachePath(filename string) (string, error) {
	base, err := CachePath()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "agent", filename), nil
}
