package deployservice

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// stagedArchivePattern names the upload while it waits for extraction. The
// random part keeps it from colliding with any file inside the bundle.
const stagedArchivePattern = ".upload-*.zip"

var (
	// ErrArchiveMissing is reported when the request carried no bundle.
	ErrArchiveMissing = errors.New("no archive uploaded")
	// ErrUnsafeEntry is reported for bundle entries that are symlinks, resolve
	// outside the site directory or would overwrite the staged upload.
	ErrUnsafeEntry = errors.New("archive entry escapes the site directory")
)

// stageArchive creates dir if needed and copies archive into a fresh
// temporary file inside it.
func stageArchive(dir string, archive io.Reader) (string, error) {
	if archive == nil {
		return "", ErrArchiveMissing
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	f, err := os.CreateTemp(dir, stagedArchivePattern)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(f, archive); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}

	return f.Name(), nil
}

// clearExcept removes every entry of dir except keep, so a redeploy replaces
// the previous content instead of merging with it.
func clearExcept(dir, keep string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, e := range entries {
		if e.Name() == keep {
			continue
		}
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// extractZip unpacks r into dest. Entries resolving outside dest, entries
// that would overwrite the reserved path and symlinks are refused.
func extractZip(r *zip.Reader, dest, reserved string) error {
	root := filepath.Clean(dest) + string(os.PathSeparator)

	for _, f := range r.File {
		target := filepath.Join(dest, f.Name)
		if !strings.HasPrefix(target+string(os.PathSeparator), root) {
			return fmt.Errorf("%w: %s", ErrUnsafeEntry, f.Name)
		}
		if target == filepath.Clean(reserved) {
			return fmt.Errorf("%w: %s", ErrUnsafeEntry, f.Name)
		}

		mode := f.Mode()
		switch {
		case mode.IsDir():
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case mode&os.ModeSymlink != 0:
			return fmt.Errorf("%w: symlink %s", ErrUnsafeEntry, f.Name)
		default:
			if err := extractFile(f, target); err != nil {
				return err
			}
		}
	}

	return nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
