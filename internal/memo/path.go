package memo

import (
	"path/filepath"
	"strings"

	"bfmemo/internal/fs"
)

// MemoExt is the extension appended to memo filenames.
const MemoExt = ".bfmemo"

// memoFileName returns the hidden memo filename for a source file name.
func memoFileName(base string) string {
	return "." + base + MemoExt
}

// resolveMemoPath computes where the memo file for id lives under cfg.
// Returns ("", false) when caching is disabled or the configured directory
// does not exist. Pure apart from the directory existence check; it never
// creates files or directories.
func resolveMemoPath(fsys fs.FS, cfg Config, id string) (string, bool) {
	if !cfg.Enabled() {
		return "", false
	}

	abs, err := filepath.Abs(id)
	if err != nil {
		return "", false
	}

	sourceDir := filepath.Dir(abs)
	name := memoFileName(filepath.Base(abs))

	// In-place: the memo sits next to its source. Configuring the cache
	// directory as the source's volume root means the same thing, since
	// mirroring the full directory chain under the root reproduces the
	// source's own directory.
	if cfg.InPlace || (cfg.Directory != "" && isVolumeRoot(cfg.Directory, abs)) {
		return filepath.Join(sourceDir, name), true
	}

	exists, err := fsys.Exists(cfg.Directory)
	if err != nil || !exists {
		return "", false
	}

	// Mirror the source's directory chain, minus the volume root, under the
	// cache directory. Two same-named sources in different directories then
	// map to distinct memo files.
	mirrored := strings.TrimPrefix(sourceDir, filepath.VolumeName(sourceDir))
	mirrored = strings.TrimPrefix(mirrored, string(filepath.Separator))

	return filepath.Join(cfg.Directory, mirrored, name), true
}

// isVolumeRoot reports whether dir is the filesystem root of the source path.
func isVolumeRoot(dir, abs string) bool {
	root := filepath.VolumeName(abs) + string(filepath.Separator)

	return filepath.Clean(dir) == filepath.Clean(root)
}
