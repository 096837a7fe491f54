package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultDataDirMacOS(t *testing.T) {
	home, _ := os.UserHomeDir()
	dir := defaultDataDirForOS("darwin")
	assert.Equal(t, filepath.Join(home, "Library", "Application Support", "tempo"), dir)
}

func TestDefaultDataDirLinux(t *testing.T) {
	home, _ := os.UserHomeDir()

	t.Setenv("XDG_DATA_HOME", "")
	dir := defaultDataDirForOS("linux")
	assert.Equal(t, filepath.Join(home, ".local", "share", "tempo"), dir)

	t.Setenv("XDG_DATA_HOME", "/custom/data")
	dir = defaultDataDirForOS("linux")
	assert.Equal(t, filepath.Join("/custom/data", "tempo"), dir)
}

func TestDefaultDataDirWindows(t *testing.T) {
	t.Setenv("LOCALAPPDATA", `C:\Users\test\AppData\Local`)
	dir := defaultDataDirForOS("windows")
	assert.Equal(t, filepath.Join(`C:\Users\test\AppData\Local`, "tempo"), dir)

	// falls back to APPDATA
	t.Setenv("LOCALAPPDATA", "")
	t.Setenv("APPDATA", `C:\Users\test\AppData\Roaming`)
	dir = defaultDataDirForOS("windows")
	assert.Equal(t, filepath.Join(`C:\Users\test\AppData\Roaming`, "tempo"), dir)
}

func TestDefaultDataDirEnvOverride(t *testing.T) {
	t.Setenv(EnvDataDir, "/srv/tempo")
	assert.Equal(t, "/srv/tempo", DefaultDataDir())
}
