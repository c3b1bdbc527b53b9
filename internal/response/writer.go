package response

import (
	"errors"
	"fmt"
	"io"

	"github.com/valyala/bytebufferpool"
)

var (
	ErrStreamWrite = errors.New("stream write failed")
	ErrAlreadySent = errors.New("response already sent")
)

// Writer sends one framed response to an io.Writer.
type Writer struct {
	w            io.Writer
	sent         bool
	statusCode   StatusCode
	bytesWritten int
	hadError     bool
}

// NewWriter creates a new response writer
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Send writes resp with Response.WriteTo. A short write is an error;
// nothing is retried.
func (w *Writer) Send(resp *Response) error {
	if w.sent {
		return ErrAlreadySent
	}
	w.sent = true
	w.statusCode = resp.Status

	n, err := resp.WriteTo(w.w)
	w.bytesWritten = int(n)
	if err != nil {
		w.hadError = true
		return fmt.Errorf("%w: %w", ErrStreamWrite, err)
	}

	return nil
}

// WriteTo assembles the response in a pooled buffer and writes it with a
// single Write call. A short write is reported as io.ErrShortWrite.
func (r *Response) WriteTo(w io.Writer) (int64, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	r.encode(buf)

	n, err := w.Write(buf.B)
	if err == nil && n < buf.Len() {
		err = io.ErrShortWrite
	}
	return int64(n), err
}

// Bytes returns the wire form of the response.
func (r *Response) Bytes() []byte {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	r.encode(buf)
	return append([]byte(nil), buf.B...)
}

// encode writes status line, headers, blank line and body. There is no
// CRLF after the body.
func (r *Response) encode(buf *bytebufferpool.ByteBuffer) {
	buf.WriteString(r.Status.StatusLine())
	buf.WriteString("\r\n")
	if r.Headers != nil {
		r.Headers.WriteTo(buf)
	}
	buf.WriteString("\r\n")
	buf.Write(r.Body)
}

// State tracking methods for connection logging

func (w *Writer) HadError() bool {
	return w.hadError
}

func (w *Writer) Sent() bool {
	return w.sent
}

func (w *Writer) StatusCode() StatusCode {
	return w.statusCode
}

func (w *Writer) BytesWritten() int {
	return w.bytesWritten
}
