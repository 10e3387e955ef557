// Package gaf writes Gene Ontology Annotation Files.
package gaf

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
)

const (
	// FileName is the uncompressed annotation file.
	FileName = "gene_association.reactome"
	// CompressedFileName is what gets published.
	CompressedFileName = FileName + ".gz"

	Version    = "2.2"
	AssignedBy = "Reactome"
)

// ErrUndatedLine means a line reached the writer without a reconciled date.
var ErrUndatedLine = errors.New("annotation line has no date")

// DateLookup returns the reconciled YYYYMMDD date of a canonical line.
type DateLookup interface {
	Date(line string) (int, bool)
}

// Header returns the three preamble lines, newline terminated.
func Header(generated time.Time) string {
	return "!gaf-version: " + Version + "\n" +
		"generated-by: " + AssignedBy + "\n" +
		"date-generated: " + generated.Format(time.DateOnly) + "\n"
}

// FormatRecord appends the date, assigned-by and two empty trailing columns to line.
func FormatRecord(line string, date int) string {
	return strings.Join([]string{line, strconv.Itoa(date), AssignedBy, "", ""}, "\t")
}

// Writer renders annotation files into a staging directory.
type Writer struct {
	dir    string
	now    func() time.Time
	logger *slog.Logger
}

// NewWriter creates a Writer staging files in dir.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	return &Writer{dir: dir, now: time.Now, logger: logger}
}

// WithClock overrides the generation date source.
func (w *Writer) WithClock(now func() time.Time) *Writer {
	w.now = now
	return w
}

// Write sorts lines, writes header and records to FileName, gzips it to
// CompressedFileName and removes FileName. It returns the path of the compressed file.
func (w *Writer) Write(ctx context.Context, lines []string, dates DateLookup) (string, error) {
	sorted := append([]string(nil), lines...)
	sort.Strings(sorted)

	records := make([]string, 0, len(sorted))
	for _, l := range sorted {
		d, ok := dates.Date(l)
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrUndatedLine, l)
		}
		records = append(records, FormatRecord(l, d))
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating staging directory %s: %w", w.dir, err)
	}
	plain := filepath.Join(w.dir, FileName)
	if err := w.writePlain(plain, records); err != nil {
		return "", err
	}
	compressed := filepath.Join(w.dir, CompressedFileName)
	if err := gzipFile(plain, compressed); err != nil {
		return "", err
	}
	if err := os.Remove(plain); err != nil {
		return "", fmt.Errorf("removing %s: %w", plain, err)
	}

	w.logger.Info("annotation file written", "path", compressed, "records", len(records))
	return compressed, nil
}

func (w *Writer) writePlain(path string, records []string) (retErr error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && retErr == nil {
			retErr = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	bw := bufio.NewWriter(f)
	if _, err := bw.WriteString(Header(w.now())); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, r := range records {
		if _, err := bw.WriteString(r + "\n"); err != nil {
			return fmt.Errorf("writing record: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return nil
}

func gzipFile(src, dst string) (retErr error) {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && retErr == nil {
			retErr = fmt.Errorf("closing %s: %w", dst, cerr)
		}
	}()

	zw := gzip.NewWriter(out)
	zw.Name = filepath.Base(src)
	if _, err := io.Copy(zw, in); err != nil {
		_ = zw.Close()
		return fmt.Errorf("compressing %s: %w", src, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finishing %s: %w", dst, err)
	}
	return nil
}
