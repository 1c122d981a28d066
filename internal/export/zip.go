// Package export packages project files into a downloadable archive.
package export

import (
	"errors"
	"fmt"
	"io"
	"time"

	"codecanvas/internal/metrics"
	"codecanvas/internal/types"

	"github.com/klauspost/compress/zip"
)

// ArchiveName is the download name offered to the browser.
const ArchiveName = "codecanvas-project.zip"

// ErrExportUnavailable is returned when no archiver is configured.
var ErrExportUnavailable = errors.New("could not download: archiving is not available")

// Archiver writes files into an archive.
type Archiver interface {
	Archive(w io.Writer, files []types.File) error
	ContentType() string
}

// ZipArchiver writes deflate-compressed zip archives.
type ZipArchiver struct {
	now func() time.Time
}

func NewZipArchiver() *ZipArchiver {
	return &ZipArchiver{now: time.Now}
}

func (z *ZipArchiver) ContentType() string { return "application/zip" }

// Archive writes one entry per file, named and filled exactly as the file.
func (z *ZipArchiver) Archive(w io.Writer, files []types.File) error {
	zw := zip.NewWriter(w)
	modified := z.now()
	for _, f := range files {
		entry, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return fmt.Errorf("failed to add %s to archive: %w", f.Name, err)
		}
		if _, err := io.WriteString(entry, f.Content); err != nil {
			return fmt.Errorf("failed to write %s to archive: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	return nil
}

// Exporter exports projects through an optional Archiver.
type Exporter struct {
	archiver Archiver
}

// NewExporter returns an Exporter; a nil archiver makes every export fail
// with ErrExportUnavailable.
func NewExporter(archiver Archiver) *Exporter {
	return &Exporter{archiver: archiver}
}

// Available reports whether exports can succeed.
func (e *Exporter) Available() bool {
	return e != nil && e.archiver != nil
}

// ContentType of the produced archive.
func (e *Exporter) ContentType() string {
	if !e.Available() {
		return ""
	}
	return e.archiver.ContentType()
}

// Export writes the archive of files to w.
func (e *Exporter) Export(w io.Writer, files []types.File) error {
	if !e.Available() {
		metrics.Exports.WithLabelValues("unavailable").Inc()
		return ErrExportUnavailable
	}
	if err := e.archiver.Archive(w, files); err != nil {
		metrics.Exports.WithLabelValues("error").Inc()
		return err
	}
	metrics.Exports.WithLabelValues("success").Inc()
	return nil
}
