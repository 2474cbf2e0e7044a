package coverage

import (
	"archive/tar"
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/zjy-dev/covtree/internal/logger"
)

// FromReport builds a report from an archive of export documents, one per
// measurement run. Every top-level *.json member is imported into the same
// forest in name order. The archive is extracted into a temporary directory
// that is removed before FromReport returns, on success and on failure.
//
// Supported archives are .zip, .tar, .tar.xz and .txz.
func FromReport(archivePath string, opts ...Option) (*Report, error) {
	tmpDir, err := os.MkdirTemp("", "covtree-report-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	if err := unpackArchive(archivePath, tmpDir); err != nil {
		return nil, fmt.Errorf("failed to unpack %s: %w", archivePath, err)
	}

	jsons, err := filepath.Glob(filepath.Join(tmpDir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(jsons)

	r := NewReport(archivePath, opts...)
	for _, jsonFile := range jsons {
		if err := r.ImportFile(jsonFile); err != nil {
			return nil, fmt.Errorf("%s: %w", archivePath, err)
		}
	}
	logger.Debug("Imported %d documents from %s", len(jsons), archivePath)
	return r, nil
}

func unpackArchive(archivePath, destDir string) error {
	name := strings.ToLower(archivePath)
	switch {
	case strings.HasSuffix(name, ".zip"):
		return unpackZip(archivePath, destDir)
	case strings.HasSuffix(name, ".tar.xz"), strings.HasSuffix(name, ".txz"):
		f, err := os.Open(archivePath)
		if err != nil {
			return err
		}
		defer f.Close()
		xzReader, err := xz.NewReader(f)
		if err != nil {
			return fmt.Errorf("failed to create xz reader: %w", err)
		}
		return unpackTar(xzReader, destDir)
	case strings.HasSuffix(name, ".tar"):
		f, err := os.Open(archivePath)
		if err != nil {
			return err
		}
		defer f.Close()
		return unpackTar(f, destDir)
	default:
		return fmt.Errorf("%w: unknown archive type %s", ErrFormat, filepath.Base(archivePath))
	}
}

// safeJoin rejects member names that would escape destDir. Names such as
// "./" that resolve to destDir itself are accepted.
func safeJoin(destDir, name string) (string, error) {
	root := filepath.Clean(destDir)
	target := filepath.Join(root, filepath.FromSlash(name))
	if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: archive member %q escapes the target directory", ErrFormat, name)
	}
	return target, nil
}

func unpackZip(archivePath, destDir string) error {
	zr, err := zip.OpenReader(archivePath)
	if errors.Is(err, zip.ErrInsecurePath) {
		zr.Close()
		return fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if err != nil {
		return err
	}
	defer zr.Close()

	for _, f := range zr.File {
		target, err := safeJoin(destDir, f.Name)
		if err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		err = writeMember(target, rc)
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func unpackTar(r io.Reader, destDir string) error {
	tr := tar.NewReader(r)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read tar: %w", err)
		}

		target, err := safeJoin(destDir, header.Name)
		if err != nil {
			return err
		}
		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeMember(target, tr); err != nil {
				return err
			}
		}
	}
}

func writeMember(target string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	out, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
