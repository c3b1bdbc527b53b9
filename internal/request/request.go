package request

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// Size limits (DoS protection)
const (
	DefaultMaxLineBytes   = 8192 // 8KB per header line
	DefaultMaxHeaderLines = 1000
)

var (
	ErrStreamRead   = errors.New("stream read failed")
	ErrLineTooLong  = errors.New("header line too long")
	ErrTooManyLines = errors.New("too many header lines")
	ErrEmptyRequest = errors.New("connection closed before a request line")
)

// HeaderBlock holds the lines of a request up to the blank line that ends
// the headers. The request line is element 0. When the blank line was seen
// before the stream closed, the last element is "".
type HeaderBlock []string

// RequestLine returns the first line of the block.
// ok is false when the peer closed without sending anything.
func (b HeaderBlock) RequestLine() (string, bool) {
	if len(b) == 0 {
		return "", false
	}
	return b[0], true
}

// Validate returns ErrEmptyRequest when no line was received.
func (b HeaderBlock) Validate() error {
	if len(b) == 0 {
		return ErrEmptyRequest
	}
	return nil
}

// Complete reports whether the block ended with the blank line.
func (b HeaderBlock) Complete() bool {
	return len(b) > 0 && b[len(b)-1] == ""
}

// Fields returns the header field lines, without the request line and
// without the terminating blank line.
func (b HeaderBlock) Fields() []string {
	if len(b) < 2 {
		return nil
	}
	fields := b[1:]
	if b.Complete() {
		fields = fields[:len(fields)-1]
	}
	return fields
}

// Reader reads header blocks line by line from a byte stream.
// It never consumes a body.
type Reader struct {
	br       *bufio.Reader
	maxLines int
}

// NewReader wraps r. Non-positive limits fall back to the defaults.
func NewReader(r io.Reader, maxLineBytes, maxLines int) *Reader {
	if maxLineBytes <= 0 {
		maxLineBytes = DefaultMaxLineBytes
	}
	if maxLines <= 0 {
		maxLines = DefaultMaxHeaderLines
	}
	return &Reader{
		br:       bufio.NewReaderSize(r, maxLineBytes),
		maxLines: maxLines,
	}
}

// ReadHeaderBlock reads from r with the default limits.
func ReadHeaderBlock(r io.Reader) (HeaderBlock, error) {
	return NewReader(r, 0, 0).ReadHeaderBlock()
}

// ReadHeaderBlock reads lines until a blank line or the end of the stream.
// Whatever was accumulated is returned alongside any error.
func (r *Reader) ReadHeaderBlock() (HeaderBlock, error) {
	var block HeaderBlock

	for {
		raw, err := r.br.ReadSlice('\n')
		if errors.Is(err, bufio.ErrBufferFull) {
			return block, ErrLineTooLong
		}
		if err != nil && err != io.EOF {
			return block, fmt.Errorf("%w: %w", ErrStreamRead, err)
		}

		// Peer closed the stream
		if len(raw) == 0 {
			return block, nil
		}

		if len(block) >= r.maxLines {
			return block, ErrTooManyLines
		}

		line := strings.TrimRightFunc(string(raw), unicode.IsSpace)
		block = append(block, line)

		// Blank line ends the headers; a partial last line ends the stream
		if line == "" || err == io.EOF {
			return block, nil
		}
	}
}
