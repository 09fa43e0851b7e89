package sources

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

const (
	extGzip = ".gz"
	extZstd = ".zst"
)

// compressedExtensions lists the file extensions OpenLineReader decompresses transparently.
var compressedExtensions = []string{extGzip, extZstd}

// LineReader is a forward-only sequence of text lines. It cannot be restarted.
//
// Usage:
//
//	for lr.Next() {
//		handle(lr.Line())
//	}
//	if err := lr.Err(); err != nil { ... }
type LineReader interface {
	// Next advances to the next line. It returns false at the end of input or on a read error.
	Next() bool
	// Line returns the current line without its terminator.
	Line() string
	// Err returns the first read error, if any. Reaching the end of input is not an error.
	Err() error
	// Close releases the decompressor and the underlying stream. It is safe to call more than once.
	Close() error
}

type lineReader struct {
	reader  *bufio.Reader
	closers []io.Closer // innermost first
	line    string
	err     error
	done    bool
	closed  bool
}

// OpenLineReader wraps rc in a LineReader, decompressing it when name ends in ".gz" or ".zst".
// The LineReader owns rc: closing it closes rc. rc is also closed when opening fails.
func OpenLineReader(rc io.ReadCloser, name string) (LineReader, error) {
	var (
		src     io.Reader = rc
		closers           = []io.Closer{rc}
	)

	switch strings.ToLower(filepath.Ext(name)) {
	case extGzip:
		gz, err := gzip.NewReader(rc)
		if err != nil {
			_ = rc.Close()
			return nil, fmt.Errorf("failed to open gzip stream %q: %w", name, err)
		}
		src = gz
		closers = append([]io.Closer{gz}, closers...)
	case extZstd:
		dec, err := zstd.NewReader(rc)
		if err != nil {
			_ = rc.Close()
			return nil, fmt.Errorf("failed to open zstd stream %q: %w", name, err)
		}
		zrc := dec.IOReadCloser()
		src = zrc
		closers = append([]io.Closer{zrc}, closers...)
	}

	return NewLineReader(src, closers...), nil
}

// NewLineReader reads lines from r. closers are closed in order by Close.
func NewLineReader(r io.Reader, closers ...io.Closer) LineReader {
	return &lineReader{
		reader:  bufio.NewReaderSize(r, 64*1024),
		closers: closers,
	}
}

func (r *lineReader) Next() bool {
	if r.done {
		return false
	}

	line, err := r.reader.ReadString('\n')
	if err != nil {
		r.done = true
		if err != io.EOF {
			r.err = err
			return false
		}
		// last line without a terminator
		if line == "" {
			return false
		}
	}

	r.line = strings.TrimRight(line, "\r\n")
	return true
}

func (r *lineReader) Line() string {
	return r.line
}

func (r *lineReader) Err() error {
	return r.err
}

func (r *lineReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.done = true

	var firstErr error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// trimCompressedExtension strips a trailing compression extension from name.
func trimCompressedExtension(name string) string {
	ext := filepath.Ext(name)
	for _, compressed := range compressedExtensions {
		if strings.EqualFold(ext, compressed) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}
