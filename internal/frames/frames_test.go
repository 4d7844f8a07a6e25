package frames

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bdougie/videoextend/internal/models"
)

func touch(t *testing.T, parts ...string) string {
	t.Helper()
	path := filepath.Join(parts...)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("frame"), 0644))
	return path
}

func TestIsImage(t *testing.T) {
	assert.True(t, IsImage("a.png"))
	assert.True(t, IsImage("a.JPG"))
	assert.True(t, IsImage("dir/a.Jpeg"))
	assert.False(t, IsImage("a.gif"))
	assert.False(t, IsImage("video_prompt.md"))
	assert.False(t, IsImage("png"))
}

func TestFindPairsSkipsSingleFrameFolders(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "solo", "frame_001.png")
	touch(t, root, "solo", "notes.txt")

	pairs, err := NewLocator(nil).FindPairs(root)
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestFindPairsKeepsFirstAndLast(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "shot", "frame_003.jpg")
	first := touch(t, root, "shot", "frame_001.png")
	touch(t, root, "shot", "frame_002.jpeg")
	last := touch(t, root, "shot", "frame_010.PNG")

	pairs, err := NewLocator(nil).FindPairs(root)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	// "frame_010.PNG" sorts after "frame_003.jpg" byte-wise
	assert.Equal(t, models.ImagePair{First: first, Last: last}, pairs[0])
}

func TestFindPairsExactlyTwo(t *testing.T) {
	root := t.TempDir()
	a := touch(t, root, "pair", "a.png")
	b := touch(t, root, "pair", "b.png")

	pairs, err := NewLocator(nil).FindPairs(root)
	require.NoError(t, err)
	assert.Equal(t, []models.ImagePair{{First: a, Last: b}}, pairs)
}

func TestFindPairsOrderedByFolderName(t *testing.T) {
	root := t.TempDir()
	// nested folder name sorts first even though its full path sorts last
	touch(t, root, "zeta", "aaa", "1.png")
	touch(t, root, "zeta", "aaa", "2.png")
	touch(t, root, "beta", "1.png")
	touch(t, root, "beta", "2.png")
	touch(t, root, "zeta", "1.png")
	touch(t, root, "zeta", "2.png")

	pairs, err := NewLocator(nil).FindPairs(root)
	require.NoError(t, err)
	require.Len(t, pairs, 3)

	var folders []string
	for _, p := range pairs {
		folders = append(folders, p.Folder())
	}
	assert.Equal(t, []string{
		filepath.Join(root, "zeta", "aaa"),
		filepath.Join(root, "beta"),
		filepath.Join(root, "zeta"),
	}, folders)
}

func TestFindPairsGroupsByImmediateParent(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "outer", "1.png")
	touch(t, root, "outer", "inner", "2.png")

	groups, err := NewLocator(nil).GroupByFolder(root)
	require.NoError(t, err)
	assert.Len(t, groups, 2)

	pairs, err := NewLocator(nil).FindPairs(root)
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestFindPairsMissingRoot(t *testing.T) {
	_, err := NewLocator(nil).FindPairs(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestFindPairsRootIsFile(t *testing.T) {
	file := touch(t, t.TempDir(), "frame.png")

	_, err := NewLocator(nil).FindPairs(file)
	assert.ErrorIs(t, err, ErrNotDirectory)
}

func TestFindPairsSkipsUnreadableSubdirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}

	root := t.TempDir()
	touch(t, root, "good", "a.png")
	touch(t, root, "good", "b.png")
	touch(t, root, "locked", "a.png")
	touch(t, root, "locked", "b.png")

	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0))
	t.Cleanup(func() { os.Chmod(locked, 0755) })

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	pairs, err := NewLocator(logger).FindPairs(root)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, filepath.Join(root, "good"), pairs[0].Folder())

	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "skipping unreadable path")
	assert.Contains(t, logs.String(), locked)
}

func TestFindPairsSymlinks(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()

	first := touch(t, root, "shot", "a.png")
	target := touch(t, outside, "real.png")
	linked := filepath.Join(root, "shot", "b.png")
	require.NoError(t, os.Symlink(target, linked))
	require.NoError(t, os.Symlink(filepath.Join(outside, "gone.png"), filepath.Join(root, "shot", "z.png")))

	touch(t, outside, "frames", "x.png")
	touch(t, outside, "frames", "y.png")
	require.NoError(t, os.Symlink(filepath.Join(outside, "frames"), filepath.Join(root, "linkdir")))

	pairs, err := NewLocator(nil).FindPairs(root)
	require.NoError(t, err)
	assert.Equal(t, []models.ImagePair{{First: first, Last: linked}}, pairs)
}
