// Package paths resolves where recents keeps its files.
//
// Data directory lookup order:
//   - an explicit override (flag or config "data_dir")
//   - $RECENTS_DATA_DIR
//   - <user config dir>/recents (e.g. ~/.config/recents, ~/Library/Application Support/recents)
//   - ~/.recents
package paths

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const (
	// AppName names the per-user directories.
	AppName = "recents"
	// DataDirEnv overrides the data directory.
	DataDirEnv = "RECENTS_DATA_DIR"

	debugLog    = "debug.log"
	tracesFile  = "traces.jsonl"
	configFile  = "config.yaml"
	dotFallback = ".recents"
)

// ErrNoHome is returned when neither a config dir nor a home dir is known.
var ErrNoHome = errors.New("cannot determine a home or config directory")

// userConfigDir and userHomeDir are swapped in tests.
var (
	userConfigDir = os.UserConfigDir
	userHomeDir   = os.UserHomeDir
)

// ResolveDataDir returns the directory holding the registry record.
// The directory is not created.
func ResolveDataDir(override string) (string, error) {
	if dir := strings.TrimSpace(override); dir != "" {
		return filepath.Clean(expandHome(dir)), nil
	}
	if dir := strings.TrimSpace(os.Getenv(DataDirEnv)); dir != "" {
		return filepath.Clean(expandHome(dir)), nil
	}
	if base, err := userConfigDir(); err == nil && base != "" {
		return filepath.Join(base, AppName), nil
	}
	if home, err := userHomeDir(); err == nil && home != "" {
		return filepath.Join(home, dotFallback), nil
	}
	return "", ErrNoHome
}

// DebugLogPath returns the default debug log inside dataDir.
func DebugLogPath(dataDir string) string {
	return filepath.Join(dataDir, debugLog)
}

// TracesPath returns the default JSONL trace file inside dataDir.
func TracesPath(dataDir string) string {
	return filepath.Join(dataDir, "traces", tracesFile)
}

// DefaultConfigPath returns <user config dir>/recents/config.yaml, or ""
// when no config dir is known.
func DefaultConfigPath() string {
	base, err := userConfigDir()
	if err != nil || base == "" {
		return ""
	}
	return filepath.Join(base, AppName, configFile)
}

// expandHome turns a leading "~/" into the user's home directory.
func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := userHomeDir()
	if err != nil || home == "" {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
