package response

import (
	json "github.com/goccy/go-json"
)

// UserScores maps "user1".."user10" to their scores.
type UserScores map[string]uint

// NewUserScores returns a fresh copy of the score table served on GET /.
func NewUserScores() UserScores {
	return UserScores{
		"user1":  10,
		"user2":  20,
		"user3":  30,
		"user4":  40,
		"user5":  50,
		"user6":  60,
		"user7":  70,
		"user8":  80,
		"user9":  90,
		"user10": 100,
	}
}

// ErrorPayload is the body of the method-not-allowed response.
// Allowed is a string that looks like a JSON array; clients depend on it.
type ErrorPayload struct {
	Status  string `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Allowed string `json:"allowed"`
}

func NewMethodNotAllowed() ErrorPayload {
	return ErrorPayload{
		Status:  "405",
		Error:   "Method Not Allowed",
		Message: "POST requests are not supported at this endpoint. Please use GET.",
		Allowed: `["GET"]`,
	}
}

func encodePayload(v any) ([]byte, error) {
	return json.Marshal(v)
}
