package store

import (
	"os"
	"path/filepath"
	"runtime"
)

// EnvDataDir overrides the default data directory.
const EnvDataDir = "TEMPO_DIR"

// DefaultDataDir returns the data directory: $TEMPO_DIR when set, else the
// OS-appropriate location.
//
//   - macOS:   ~/Library/Application Support/tempo
//   - Linux:   $XDG_DATA_HOME/tempo (fallback ~/.local/share/tempo)
//   - Windows: %LOCALAPPDATA%\tempo (fallback %APPDATA%\tempo)
func DefaultDataDir() string {
	if dir := os.Getenv(EnvDataDir); dir != "" {
		return dir
	}
	return defaultDataDirForOS(runtime.GOOS)
}

func defaultDataDirForOS(goos string) string {
	home, _ := os.UserHomeDir()

	switch goos {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "tempo")
	case "windows":
		for _, env := range []string{"LOCALAPPDATA", "APPDATA"} {
			if dir := os.Getenv(env); dir != "" {
				return filepath.Join(dir, "tempo")
			}
		}
		return filepath.Join(home, "tempo")
	default:
		if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
			return filepath.Join(dir, "tempo")
		}
		return filepath.Join(home, ".local", "share", "tempo")
	}
}
