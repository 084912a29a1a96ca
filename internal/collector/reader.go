package collector

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// artifactReader wraps a file with transparent gzip decompression so both
// readers get plain NDJSON regardless of how the artifact was shipped.
type artifactReader struct {
	io.Reader
	closers []io.Closer
}

func (r *artifactReader) Close() error {
	var firstErr error
	// Close in reverse so the gzip reader drains before the file goes away.
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// openArtifact opens path for reading, decompressing when the name carries
// a .gz suffix.
func openArtifact(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("collector: open artifact: %w", err)
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("collector: gzip artifact %s: %w", path, err)
	}
	return &artifactReader{Reader: gz, closers: []io.Closer{f, gz}}, nil
}
