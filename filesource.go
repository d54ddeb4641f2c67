package lactoserv

import (
	"io"
	"os"
)

// openFileRange opens path and returns a reader restricted to
// [offset, offset+length), or to end-of-file when length < 0.
func openFileRange(path string, offset, length int64) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	if offset > 0 {
		if _, err := f.Seek(offset, io.SeekStart); err != nil {
			f.Close()
			return nil, err
		}
	}

	if length < 0 {
		return f, nil
	}

	return &limitedFile{f: f, r: io.LimitReader(f, length)}, nil
}

// limitedFile adapts an io.LimitReader over an *os.File back into an
// io.ReadCloser that still closes the underlying file.
type limitedFile struct {
	f *os.File
	r io.Reader
}

func (l *limitedFile) Read(p []byte) (int, error) { return l.r.Read(p) }
func (l *limitedFile) Close() error                { return l.f.Close() }
