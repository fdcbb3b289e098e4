package rw

import (
	"bytes"
	"io/ioutil"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLimitReaderRead(t *testing.T) {
	buf := bytes.NewBufferString(`{"gzip":true}`)
	p := make([]byte, 64)

	n, err := NewLimitReader(buf, ReadLimitProps{FailOnExceed: true, Limit: 16}).Read(p)

	assert.Nil(t, err)
	assert.Equal(t, 0, buf.Len())
	assert.Equal(t, 13, n)
	assert.Equal(t, `{"gzip":true}`, string(p[:n]))
}

func TestLimitReaderReadErrExceed(t *testing.T) {
	buf := bytes.NewBufferString(`{"gzip":true}`)
	p := make([]byte, 64)

	n, err := NewLimitReader(buf, ReadLimitProps{FailOnExceed: true, Limit: 8}).Read(p)

	assert.Equal(t, ErrLimitExceeded, err)
	assert.Equal(t, 0, n)
}

func TestLimitReaderReadTruncates(t *testing.T) {
	buf := bytes.NewBufferString(`{"gzip":true}`)

	p, err := ioutil.ReadAll(NewLimitReader(buf, ReadLimitProps{FailOnExceed: false, Limit: 8}))

	assert.Nil(t, err)
	assert.Equal(t, `{"gzip":`, string(p))
	assert.Equal(t, 5, buf.Len())
}

func TestLimitReaderCountsAcrossReads(t *testing.T) {
	r := NewLimitReader(bytes.NewBufferString("0123456789"), ReadLimitProps{FailOnExceed: true, Limit: 6})
	p := make([]byte, 4)

	n, err := r.Read(p)
	assert.Nil(t, err)
	assert.Equal(t, 4, n)

	_, err = r.Read(p)
	assert.Equal(t, ErrLimitExceeded, err)
}

func TestCopyWithLimit(t *testing.T) {
	r := bytes.NewBufferString("some data")
	w := bytes.NewBuffer([]byte{})

	n, err := CopyWithLimit(w, r, ReadLimitProps{
		FailOnExceed: false,
		Limit:        16,
	})

	assert.Nil(t, err)
	assert.Equal(t, int64(9), n)
	assert.Equal(t, "some data", w.String())
}

func TestCopyWithLimitErrExceed(t *testing.T) {
	r := bytes.NewBufferString("some data")
	w := bytes.NewBuffer([]byte{})

	n, err := CopyWithLimit(w, r, ReadLimitProps{
		FailOnExceed: true,
		Limit:        8,
	})

	assert.Equal(t, ErrLimitExceeded, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyWithLimitNilReader(t *testing.T) {
	n, err := CopyWithLimit(bytes.NewBuffer(nil), nil, ReadLimitProps{Limit: 8})

	assert.Nil(t, err)
	assert.Equal(t, int64(0), n)
}

func TestReadAllWithLimit(t *testing.T) {
	p, err := ReadAllWithLimit(strings.NewReader("some data"), 9)
	assert.Nil(t, err)
	assert.Equal(t, "some data", string(p))

	_, err = ReadAllWithLimit(strings.NewReader("some data"), 8)
	assert.Equal(t, ErrLimitExceeded, err)
}

func TestProgressReader(t *testing.T) {
	var calls [][2]int64
	r := NewProgressReader(strings.NewReader("0123456789"), 10, func(read, total int64) {
		calls = append(calls, [2]int64{read, total})
	})

	p := make([]byte, 4)
	for {
		if _, err := r.Read(p); err != nil {
			break
		}
	}

	assert.Equal(t, [][2]int64{{4, 10}, {8, 10}, {10, 10}}, calls)
}
