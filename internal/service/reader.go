package service

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

// trackingReader counts bytes read and remembers the first non-EOF read error.
type trackingReader struct {
	r   io.Reader
	n   int64
	err error
}

func (t *trackingReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	t.n += int64(n)
	if err != nil && !errors.Is(err, io.EOF) && t.err == nil {
		t.err = err
	}
	return n, err
}

// readableSize reports the length of file when it can tell, or -1.
// For an *os.File the handle is stat'ed, which fails for closed or unusable files.
func readableSize(file io.Reader) (int64, error) {
	switch f := file.(type) {
	case interface{ Stat() (os.FileInfo, error) }:
		info, err := f.Stat()
		if err != nil {
			return -1, err
		}
		if info.IsDir() {
			return -1, errors.New("is a directory")
		}
		return info.Size(), nil
	case interface{ Size() int64 }:
		return f.Size(), nil
	default:
		return -1, nil
	}
}

// fileName returns the base name of file when it carries one.
func fileName(file io.Reader) string {
	if n, ok := file.(interface{ Name() string }); ok && n.Name() != "" {
		return filepath.Base(n.Name())
	}
	return ""
}
