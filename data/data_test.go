package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPath(t *testing.T) {
	r := require.New(t)

	dir := t.TempDir()
	SetBase(dir)
	defer SetBase("")

	r.Equal(dir, Base())
	r.Equal(filepath.Join(dir, "receipts"), Path("receipts"))
	r.Equal("/var/lib/upstamp", Path("/var/lib/upstamp"))
}

func TestEnsure(t *testing.T) {
	r := require.New(t)

	dir := filepath.Join(t.TempDir(), "nested", "home")
	SetBase(dir)
	defer SetBase("")

	r.NoError(Ensure())
	info, err := os.Stat(dir)
	r.NoError(err)
	r.True(info.IsDir())
}

func TestDefaultBase(t *testing.T) {
	SetBase("")
	require.Equal(t, DefaultHome(), Base())
	require.Equal(t, homeDir, filepath.Base(Base()))
}
