package response

import (
	"fmt"
	"strconv"

	"github.com/Brownie44l1/scoreserver/internal/headers"
	"github.com/Brownie44l1/scoreserver/internal/request"
)

// ScoresRequestLine is the only request line answered with the score table.
const ScoresRequestLine = "GET / HTTP/1.1"

// Response is a fully framed response: status line, headers and a body
// whose length is already known.
type Response struct {
	Status  StatusCode
	Headers *headers.Headers
	Body    []byte
}

// New serializes payload and attaches the JSON and CORS headers sent on
// every response.
func New(code StatusCode, payload any) (*Response, error) {
	body, err := encodePayload(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %d payload: %w", code, err)
	}

	h := headers.NewHeaders()
	h.Set("Content-Type", "application/json")
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET")
	h.Set("Access-Control-Max-Age", "86400")
	h.Set("Access-Control-Allow-Headers", "X-PINGOTHER, Content-Type")
	h.Set("Content-Length", strconv.Itoa(len(body)))

	return &Response{
		Status:  code,
		Headers: h,
		Body:    body,
	}, nil
}

// ForRequest picks the response for a header block. Only an exact
// "GET / HTTP/1.1" request line gets the scores; everything else, including
// a connection that sent nothing, gets 405.
func ForRequest(block request.HeaderBlock) (*Response, error) {
	if line, ok := block.RequestLine(); ok && line == ScoresRequestLine {
		return Scores()
	}
	return MethodNotAllowed()
}

// Scores builds the 200 response with the user score table.
func Scores() (*Response, error) {
	return New(StatusOK, NewUserScores())
}

// MethodNotAllowed builds the 405 response.
func MethodNotAllowed() (*Response, error) {
	return New(StatusMethodNotAllowed, NewMethodNotAllowed())
}
