package npk

import (
	"context"
	"os/exec"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/npk/internal/testutil"
)

func requireShell(t *testing.T) string {
	t.Helper()
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	return sh
}

func TestCommandDecompiler(t *testing.T) {
	t.Parallel()
	sh := requireShell(t)

	dir := t.TempDir()
	src := testutil.WriteFile(t, dir, "main.pyc", pycPayload)
	dst := filepath.Join(dir, "main.py")

	d := CommandDecompiler{Path: sh, Args: []string{"-c", `cp "$0" "$1"`, PlaceholderSrc, PlaceholderDst}}
	require.NoError(t, d.Decompile(context.Background(), src, dst))
	assert.Equal(t, pycPayload, readFile(t, dst))
}

func TestCommandDecompiler_Failure(t *testing.T) {
	t.Parallel()
	sh := requireShell(t)

	d := CommandDecompiler{Path: sh, Args: []string{"-c", "echo unsupported opcode >&2; exit 3"}}
	err := d.Decompile(context.Background(), "in.pyc", "out.py")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported opcode")

	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.ExitCode())

	require.Error(t, CommandDecompiler{}.Decompile(context.Background(), "a", "b"))
}

func TestRunStage(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, name := range []string{"a/1.nxs", "a/2.nxs", "b/3.nxs", "b/skip.txt"} {
		testutil.WriteFile(t, root, name, []byte("x"))
	}
	files, err := FindFiles(root, ".nxs")
	require.NoError(t, err)
	require.Len(t, files, 3)

	var calls atomic.Int32
	logPath := filepath.Join(root, "failed.txt")
	res, err := RunStage(context.Background(), files, func(_ context.Context, path string) error {
		calls.Add(1)
		if filepath.Base(path) == "2.nxs" {
			return ErrNotNXS
		}
		return nil
	}, StageWithWorkers(2), StageWithRoot(root), StageWithFailureLog(logPath))
	require.NoError(t, err)

	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 3, res.Done)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, "a/2.nxs\n", string(readFile(t, logPath)))
}
