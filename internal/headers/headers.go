package headers

import (
	"fmt"
	"io"
	"strings"
)

// Headers is an ordered header set. Lookups are case-insensitive; the
// name passed to the first Set or Add is the one written on the wire.
type Headers struct {
	order  []string
	names  map[string]string
	values map[string][]string
}

func NewHeaders() *Headers {
	return &Headers{
		names:  make(map[string]string),
		values: make(map[string][]string),
	}
}

// Get returns the first value for a header
func (h *Headers) Get(key string) (string, bool) {
	values := h.values[strings.ToLower(key)]
	if len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// GetAll returns all values for a header
func (h *Headers) GetAll(key string) []string {
	return h.values[strings.ToLower(key)]
}

// Set replaces all values for a header, keeping its position
func (h *Headers) Set(key, value string) {
	lower := h.track(key)
	h.values[lower] = []string{value}
}

// Add appends a value to a header
func (h *Headers) Add(key, value string) {
	lower := h.track(key)
	h.values[lower] = append(h.values[lower], value)
}

// Del removes a header
func (h *Headers) Del(key string) {
	lower := strings.ToLower(key)
	if _, ok := h.names[lower]; !ok {
		return
	}
	delete(h.names, lower)
	delete(h.values, lower)
	for i, k := range h.order {
		if k == lower {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of distinct header names
func (h *Headers) Len() int {
	return len(h.order)
}

func (h *Headers) track(key string) string {
	lower := strings.ToLower(key)
	if _, ok := h.names[lower]; !ok {
		h.names[lower] = key
		h.order = append(h.order, lower)
	}
	return lower
}

// WriteTo writes "Name: value\r\n" for every value in insertion order.
// The blank line that ends a header section is not written.
func (h *Headers) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, lower := range h.order {
		name := h.names[lower]
		for _, value := range h.values[lower] {
			n, err := io.WriteString(w, name+": "+value+"\r\n")
			total += int64(n)
			if err != nil {
				return total, err
			}
		}
	}
	return total, nil
}

// FromLines parses header field lines that were already split and trimmed.
// Parsing stops at the first malformed line; the fields before it are kept.
func FromLines(lines []string) (*Headers, error) {
	h := NewHeaders()
	for _, line := range lines {
		if line == "" {
			break
		}

		// Obsolete line folding, reject it
		if line[0] == ' ' || line[0] == '\t' {
			return h, fmt.Errorf("obsolete line folding not supported")
		}

		name, value, err := parseHeader(line)
		if err != nil {
			return h, err
		}
		h.Add(name, value)
	}
	return h, nil
}

func parseHeader(line string) (string, string, error) {
	colonIdx := strings.IndexByte(line, ':')
	if colonIdx == -1 {
		return "", "", fmt.Errorf("malformed header: no colon")
	}

	name := line[:colonIdx]
	value := line[colonIdx+1:]

	if name == "" || strings.ContainsAny(name, " \t") {
		return "", "", fmt.Errorf("malformed header: whitespace in name")
	}

	for i := 0; i < len(name); i++ {
		if !isValidHeaderChar(name[i]) {
			return "", "", fmt.Errorf("invalid character in header name: %c", name[i])
		}
	}

	return name, strings.TrimSpace(value), nil
}

func isValidHeaderChar(b byte) bool {
	return (b >= 'A' && b <= 'Z') ||
		(b >= 'a' && b <= 'z') ||
		(b >= '0' && b <= '9') ||
		b == '!' || b == '#' || b == '$' || b == '%' || b == '&' ||
		b == '\'' || b == '*' || b == '+' || b == '-' || b == '.' ||
		b == '^' || b == '_' || b == '`' || b == '|' || b == '~'
}
