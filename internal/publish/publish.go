// Package publish relocates a finished release artifact into the release output.
package publish

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Driver identifies a Publisher implementation.
type Driver string

const (
	DriverFS Driver = "fs"
	DriverS3 Driver = "s3"
)

// IsValid returns true if the driver is recognized.
func (d Driver) IsValid() bool {
	return d == DriverFS || d == DriverS3
}

// FilesystemPublisher moves artifacts into <root>/<release>/.
type FilesystemPublisher struct {
	dir    string
	logger *slog.Logger
}

// NewFilesystemPublisher creates a publisher targeting root/release.
func NewFilesystemPublisher(root, release string, logger *slog.Logger) *FilesystemPublisher {
	return &FilesystemPublisher{dir: filepath.Join(root, release), logger: logger}
}

// Dir returns the release directory.
func (p *FilesystemPublisher) Dir() string { return p.dir }

// Publish moves path into the release directory, replacing a file of the same name.
func (p *FilesystemPublisher) Publish(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating release directory %s: %w", p.dir, err)
	}
	dst := filepath.Join(p.dir, filepath.Base(path))
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("removing existing %s: %w", dst, err)
	}

	if err := os.Rename(path, dst); err != nil {
		// Rename fails across devices; fall back to copy and remove.
		if cerr := copyFile(path, dst); cerr != nil {
			return "", fmt.Errorf("moving %s to %s: %w", path, dst, cerr)
		}
		if rerr := os.Remove(path); rerr != nil {
			p.logger.Warn("could not remove staged artifact", "path", path, "error", rerr)
		}
	}

	p.logger.Info("artifact published", "path", dst)
	return dst, nil
}

func copyFile(src, dst string) (retErr error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && retErr == nil {
			retErr = cerr
		}
	}()
	_, err = io.Copy(out, in)
	return err
}
