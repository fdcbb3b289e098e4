package rw

import "io"

// ProgressReader reports the number of bytes read from the
// underlying reader after every read
type ProgressReader struct {
	reader   io.Reader
	total    int64
	read     int64
	progress func(read, total int64)
}

// NewProgressReader returns a reader that notifies progress with the
// bytes read so far and total, which is -1 when unknown
func NewProgressReader(reader io.Reader, total int64, progress func(read, total int64)) *ProgressReader {
	return &ProgressReader{reader: reader, total: total, progress: progress}
}

// Read is the implementation of Reader for ProgressReader
func (r *ProgressReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	if n > 0 {
		r.read += int64(n)
		r.progress(r.read, r.total)
	}

	return n, err
}
