package memo_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bfmemo/internal/fake"
	"bfmemo/internal/memo"
)

func osStatExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}

	if os.IsNotExist(err) {
		return false, nil
	}

	return false, err
}

// mirroredPath is the expected memo location for an absolute source path
// under a cache directory: the source's directory chain, minus the leading
// separator, replicated under the cache root.
func mirroredPath(cacheDir, id string) string {
	sourceDir := strings.TrimPrefix(filepath.Dir(id), string(filepath.Separator))

	return filepath.Join(cacheDir, sourceDir, "."+filepath.Base(id)+memo.MemoExt)
}

func TestMemoPathDisabled(t *testing.T) {
	t.Parallel()

	id := writeFakeSource(t, t.TempDir(), "test.fake", "x")

	m := memo.New(fake.NewReader(), memo.Config{})

	path, ok := m.MemoPath(id)
	if ok || path != "" {
		t.Errorf("expected no memo path, got %q", path)
	}
}

func TestMemoPathNonExistentDirectory(t *testing.T) {
	t.Parallel()

	id := writeFakeSource(t, t.TempDir(), "test.fake", "x")
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	m := memo.New(fake.NewReader(), memo.Config{Directory: missing})

	if _, ok := m.MemoPath(id); ok {
		t.Error("non-existent cache directory should resolve no memo path")
	}

	// The resolver must not have created the directory as a side effect.
	if exists, _ := osStatExists(missing); exists {
		t.Error("resolver must not create directories")
	}
}

func TestMemoPathMirrorsSourceDirectory(t *testing.T) {
	t.Parallel()

	id := writeFakeSource(t, t.TempDir(), "test.fake", "x")
	cacheDir := t.TempDir()

	m := memo.New(fake.NewReader(), memo.Config{Directory: cacheDir})

	path, ok := m.MemoPath(id)
	if !ok {
		t.Fatal("expected a memo path")
	}

	want := mirroredPath(cacheDir, id)
	if path != want {
		t.Errorf("memo path mismatch:\n got %s\nwant %s", path, want)
	}

	if !strings.HasPrefix(path, cacheDir+string(filepath.Separator)) {
		t.Errorf("memo path %s should lie under cache dir %s", path, cacheDir)
	}
}

func TestMemoPathIsPure(t *testing.T) {
	t.Parallel()

	id := writeFakeSource(t, t.TempDir(), "test.fake", "x")

	m := memo.New(fake.NewReader(), memo.Config{Directory: t.TempDir()})

	first, ok1 := m.MemoPath(id)
	second, ok2 := m.MemoPath(id)

	if ok1 != ok2 || first != second {
		t.Errorf("repeated resolution differs: %q vs %q", first, second)
	}
}

func TestMemoPathSameNameDifferentDirsNoCollision(t *testing.T) {
	t.Parallel()

	idA := writeFakeSource(t, t.TempDir(), "test.fake", "a")
	idB := writeFakeSource(t, t.TempDir(), "test.fake", "b")

	m := memo.New(fake.NewReader(), memo.Config{Directory: t.TempDir()})

	pathA, okA := m.MemoPath(idA)
	pathB, okB := m.MemoPath(idB)

	if !okA || !okB {
		t.Fatal("both paths should resolve")
	}

	if pathA == pathB {
		t.Errorf("same-named sources in different directories collided: %s", pathA)
	}
}

func TestMemoPathInPlace(t *testing.T) {
	t.Parallel()

	srcDir := t.TempDir()
	id := writeFakeSource(t, srcDir, "test.fake", "x")

	m := memo.New(fake.NewReader(), memo.Config{InPlace: true})

	path, ok := m.MemoPath(id)
	if !ok {
		t.Fatal("expected a memo path")
	}

	want := filepath.Join(srcDir, ".test.fake"+memo.MemoExt)
	if path != want {
		t.Errorf("in-place memo path mismatch:\n got %s\nwant %s", path, want)
	}
}

func TestMemoPathVolumeRootMeansInPlace(t *testing.T) {
	t.Parallel()

	srcDir := t.TempDir()
	id := writeFakeSource(t, srcDir, "test.fake", "x")

	// Configuring the source's own filesystem root as the cache directory
	// resolves to in-place placement.
	root := filepath.VolumeName(id) + string(filepath.Separator)

	m := memo.New(fake.NewReader(), memo.Config{Directory: root})

	path, ok := m.MemoPath(id)
	if !ok {
		t.Fatal("expected a memo path")
	}

	want := filepath.Join(srcDir, ".test.fake"+memo.MemoExt)
	if path != want {
		t.Errorf("volume-root memo path mismatch:\n got %s\nwant %s", path, want)
	}
}
