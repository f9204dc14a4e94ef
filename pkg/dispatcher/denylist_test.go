package dispatcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDenylistParsesCommaSeparatedLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "classifier-blocklist.txt")
	require.NoError(t, os.WriteFile(path, []byte("cron, systemd-journald\nsshd\n"), 0o600))

	d := LoadDenylist(path)

	assert.True(t, d.Contains("cron"))
	assert.True(t, d.Contains("systemd-journald"))
	assert.True(t, d.Contains("sshd"))
	assert.False(t, d.Contains("gst-launch-1.0"))
}

func TestLoadDenylistMissingFileYieldsEmptyUsableDenylist(t *testing.T) {
	d := LoadDenylist(filepath.Join(t.TempDir(), "does-not-exist.txt"))
	assert.False(t, d.Contains("anything"))
}

func TestNilDenylistNeverMatches(t *testing.T) {
	var d *Denylist
	assert.False(t, d.Contains("anything"))
}
