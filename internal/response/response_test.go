package response

import (
	"bytes"
	"errors"
	"io"
	"strconv"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brownie44l1/scoreserver/internal/request"
)

const methodNotAllowedBody = `{"status":"405","error":"Method Not Allowed",` +
	`"message":"POST requests are not supported at this endpoint. Please use GET.",` +
	`"allowed":"[\"GET\"]"}`

// splitResponse splits raw wire bytes into status line, header lines and body
func splitResponse(t *testing.T, raw []byte) (string, []string, []byte) {
	t.Helper()
	head, body, found := bytes.Cut(raw, []byte("\r\n\r\n"))
	require.True(t, found, "no blank line in %q", raw)
	lines := strings.Split(string(head), "\r\n")
	return lines[0], lines[1:], body
}

func TestStatusLine(t *testing.T) {
	assert.Equal(t, "HTTP/1.1 200 OK", StatusOK.StatusLine())
	assert.Equal(t, "HTTP/1.1 405 Method Not Allowed", StatusMethodNotAllowed.StatusLine())
	assert.Equal(t, "HTTP/1.1 400 Bad Request", StatusBadRequest.StatusLine())
	assert.Equal(t, "HTTP/1.1 599 Unknown", StatusCode(599).StatusLine())

	assert.True(t, StatusOK.IsSuccess())
	assert.True(t, StatusMethodNotAllowed.IsClientError())
	assert.True(t, StatusInternalServerError.IsServerError())
}

func TestScoresResponse(t *testing.T) {
	block := request.HeaderBlock{"GET / HTTP/1.1", "Host: x", ""}
	resp, err := ForRequest(block)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, resp.Status)

	status, headerLines, body := splitResponse(t, resp.Bytes())
	assert.Equal(t, "HTTP/1.1 200 OK", status)
	assert.Equal(t, []string{
		"Content-Type: application/json",
		"Access-Control-Allow-Origin: *",
		"Access-Control-Allow-Methods: GET",
		"Access-Control-Max-Age: 86400",
		"Access-Control-Allow-Headers: X-PINGOTHER, Content-Type",
		"Content-Length: " + strconv.Itoa(len(body)),
	}, headerLines)

	var got map[string]uint
	require.NoError(t, json.Unmarshal(body, &got))
	want := map[string]uint{
		"user1": 10, "user2": 20, "user3": 30, "user4": 40, "user5": 50,
		"user6": 60, "user7": 70, "user8": 80, "user9": 90, "user10": 100,
	}
	assert.Equal(t, want, got)
}

func TestMethodNotAllowedResponse(t *testing.T) {
	lines := []request.HeaderBlock{
		{"POST / HTTP/1.1", ""},
		{"GET /foo HTTP/1.1", ""},
		{"get / HTTP/1.1", ""},
		{"GET / HTTP/1.0", ""},
		{"GET / HTTP/1.1 extra", ""},
		{""},
		{},
		nil,
	}

	for _, block := range lines {
		resp, err := ForRequest(block)
		require.NoError(t, err)

		status, headerLines, body := splitResponse(t, resp.Bytes())
		assert.Equal(t, "HTTP/1.1 405 Method Not Allowed", status, "block %q", block)
		assert.Contains(t, headerLines, "Content-Length: "+strconv.Itoa(len(body)))
		assert.Equal(t, methodNotAllowedBody, string(body))

		var got map[string]string
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, map[string]string{
			"status":  "405",
			"error":   "Method Not Allowed",
			"message": "POST requests are not supported at this endpoint. Please use GET.",
			"allowed": `["GET"]`,
		}, got)
	}
}

func TestNoTrailingCRLFAfterBody(t *testing.T) {
	resp, err := MethodNotAllowed()
	require.NoError(t, err)

	raw := resp.Bytes()
	assert.True(t, bytes.HasSuffix(raw, []byte(`"}`)))
	assert.False(t, bytes.HasSuffix(raw, []byte("\r\n")))
}

func TestPayloadsAreFresh(t *testing.T) {
	scores := NewUserScores()
	scores["user1"] = 0
	delete(scores, "user2")

	assert.Equal(t, uint(10), NewUserScores()["user1"])
	assert.Len(t, NewUserScores(), 10)
}

func TestResponsesAreByteIdentical(t *testing.T) {
	first, err := Scores()
	require.NoError(t, err)
	second, err := Scores()
	require.NoError(t, err)
	assert.Equal(t, first.Bytes(), second.Bytes())
}

func TestWriterSendSingleWrite(t *testing.T) {
	resp, err := Scores()
	require.NoError(t, err)

	cw := &countingWriter{}
	w := NewWriter(cw)
	require.NoError(t, w.Send(resp))

	assert.Equal(t, 1, cw.writes)
	assert.Equal(t, resp.Bytes(), cw.buf.Bytes())
	assert.Equal(t, StatusOK, w.StatusCode())
	assert.Equal(t, cw.buf.Len(), w.BytesWritten())
	assert.True(t, w.Sent())
	assert.False(t, w.HadError())

	// Second send is rejected
	err = w.Send(resp)
	assert.ErrorIs(t, err, ErrAlreadySent)
	assert.Equal(t, 1, cw.writes)
}

func TestWriterSendFailure(t *testing.T) {
	resp, err := MethodNotAllowed()
	require.NoError(t, err)

	boom := errors.New("broken pipe")
	w := NewWriter(&failingWriter{err: boom})
	err = w.Send(resp)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStreamWrite)
	assert.ErrorIs(t, err, boom)
	assert.True(t, w.HadError())
	assert.Equal(t, StatusMethodNotAllowed, w.StatusCode())
}

func TestWriterShortWrite(t *testing.T) {
	resp, err := Scores()
	require.NoError(t, err)

	w := NewWriter(&shortWriter{max: 10})
	err = w.Send(resp)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStreamWrite)
	assert.Equal(t, 10, w.BytesWritten())
	assert.True(t, w.HadError())
}

func TestResponseWriteTo(t *testing.T) {
	resp, err := Scores()
	require.NoError(t, err)

	cw := &countingWriter{}
	n, err := resp.WriteTo(cw)
	require.NoError(t, err)
	assert.Equal(t, 1, cw.writes)
	assert.Equal(t, int64(len(resp.Bytes())), n)
	assert.Equal(t, resp.Bytes(), cw.buf.Bytes())

	n, err = resp.WriteTo(&shortWriter{max: 10})
	assert.ErrorIs(t, err, io.ErrShortWrite)
	assert.Equal(t, int64(10), n)
}

type countingWriter struct {
	buf    bytes.Buffer
	writes int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	c.writes++
	return c.buf.Write(p)
}

type failingWriter struct {
	err error
}

func (f *failingWriter) Write(p []byte) (int, error) {
	return 0, f.err
}

// shortWriter accepts at most max bytes without reporting an error
type shortWriter struct {
	max int
}

func (s *shortWriter) Write(p []byte) (int, error) {
	if len(p) > s.max {
		return s.max, nil
	}
	return len(p), nil
}
