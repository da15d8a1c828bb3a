package packager

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zip"
)

const (
	ArchiveFileName = "output_files.zip"
	ArchiveMimeType = "application/zip"
)

// EntryName is the archive entry name for the image at the given 0-based
// position in the generation output.
func EntryName(index int) string {
	return fmt.Sprintf("output_file_%d.png", index+1)
}

type archiveWriter struct {
	buf     bytes.Buffer
	zw      *zip.Writer
	entries []string
}

func newArchiveWriter() *archiveWriter {
	w := &archiveWriter{}
	w.zw = zip.NewWriter(&w.buf)
	return w
}

func (w *archiveWriter) add(name string, data []byte) error {
	dst, err := w.zw.Create(name)
	if err != nil {
		return fmt.Errorf("error creating archive entry %s: %w", name, err)
	}
	if _, err := dst.Write(data); err != nil {
		return fmt.Errorf("error writing archive entry %s: %w", name, err)
	}
	w.entries = append(w.entries, name)
	return nil
}

func (w *archiveWriter) close() ([]byte, error) {
	if err := w.zw.Close(); err != nil {
		return nil, fmt.Errorf("error finalizing archive: %w", err)
	}
	return w.buf.Bytes(), nil
}

// ReadArchive unpacks archive bytes into a map of entry name to content.
func ReadArchive(data []byte) (map[string][]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("error opening archive: %w", err)
	}

	files := make(map[string][]byte, len(zr.File))
	for _, file := range zr.File {
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("error opening archive entry %s: %w", file.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("error reading archive entry %s: %w", file.Name, err)
		}
		files[file.Name] = content
	}

	return files, nil
}
