package request

import (
	"errors"
	"strings"
)

var (
	ErrMalformedRequestLine = errors.New("malformed request line")
	ErrInvalidMethod        = errors.New("invalid HTTP method")
	ErrInvalidPath          = errors.New("invalid request path")
	ErrUnsupportedVersion   = errors.New("unsupported HTTP version")
)

// RequestLine is the split form of a request line. It is only used for
// logging; routing compares the raw line.
type RequestLine struct {
	Method  string
	Target  string
	Version string
}

// ParseRequestLine splits: METHOD TARGET VERSION
func ParseRequestLine(line string) (RequestLine, error) {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) != 3 {
		return RequestLine{}, ErrMalformedRequestLine
	}

	rl := RequestLine{
		Method:  parts[0],
		Target:  parts[1],
		Version: parts[2],
	}

	if !isValidMethod(rl.Method) {
		return rl, ErrInvalidMethod
	}

	if !isValidPath(rl.Target) {
		return rl, ErrInvalidPath
	}

	if !isValidVersion(rl.Version) {
		return rl, ErrUnsupportedVersion
	}

	return rl, nil
}

// isValidMethod checks if the method is a known HTTP method
func isValidMethod(method string) bool {
	switch method {
	case "GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS", "CONNECT", "TRACE":
		return true
	default:
		return false
	}
}

// isValidPath accepts origin-form, "*" and absolute-form targets
func isValidPath(path string) bool {
	if len(path) == 0 {
		return false
	}

	if path[0] == '/' || path == "*" {
		return true
	}

	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

func isValidVersion(version string) bool {
	return version == "HTTP/1.0" || version == "HTTP/1.1"
}
