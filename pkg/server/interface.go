/*
Package server implements msgpack IPC for passphrase scoring.

The server reads a stream of msgpack maps from stdin and answers each with one
msgpack map on stdout. Requests are handled synchronously, in order, and every
response echoes the request ID.

# IPC

Score a phrase:

	{"id": "req_001", "p": "correct horse battery staple"}

Override the penalty model with a fixed number of bits:

	{"id": "req_002", "p": "correct horse battery staple", "pen": 12}

The response carries the entropy figures and both crack-time estimates, plus
the handling time in microseconds:

	{"id": "req_001", "phrase": "...", "words": 4, "entropy": 51.7, "penalty": 0,
	 "adjusted": 51.7, "offline": {"s": 3.6e3, "f": "1.0 hours", "fl": "..."}, ..., "t": 87}

A health ping:

	{"id": "ping", "action": "health"}

Failures are reported as {"id": ..., "e": message, "c": code}.
*/
package server

// Actions accepted in the "action" field. An empty action means score.
const (
	ActionScore  = "score"
	ActionHealth = "health"
)

// Error codes used in ScoreError.
const (
	CodeBadRequest = 400
	CodeTooLong    = 413
	CodeInternal   = 500
)

// Request is the union of every request shape; Action selects the handler.
type Request struct {
	ID      string   `msgpack:"id"`
	Action  string   `msgpack:"action,omitempty"`
	Phrase  string   `msgpack:"p,omitempty"`
	Penalty *float64 `msgpack:"pen,omitempty"`
}

// CrackTime is one crack-time estimate on the wire.
type CrackTime struct {
	Seconds   float64 `msgpack:"s"`
	Formatted string  `msgpack:"f"`
	Flair     string  `msgpack:"fl"`
}

// SignalScore is one penalty signal's contribution.
type SignalScore struct {
	Name  string `msgpack:"n"`
	Score int    `msgpack:"v"`
}

// Reference is the zxcvbn estimate, present when enabled.
type Reference struct {
	Entropy   float64 `msgpack:"entropy"`
	Score     int     `msgpack:"score"`
	CrackTime string  `msgpack:"crack"`
}

// ScoreResponse - scoring response
type ScoreResponse struct {
	ID         string        `msgpack:"id"`
	Phrase     string        `msgpack:"phrase"`
	Words      int           `msgpack:"words"`
	Entropy    float64       `msgpack:"entropy"`
	Penalty    float64       `msgpack:"penalty"`
	Overridden bool          `msgpack:"overridden,omitempty"`
	Adjusted   float64       `msgpack:"adjusted"`
	Offline    CrackTime     `msgpack:"offline"`
	Online     CrackTime     `msgpack:"online"`
	Signals    []SignalScore `msgpack:"signals,omitempty"`
	Reference  *Reference    `msgpack:"ref,omitempty"`
	TimeTaken  int64         `msgpack:"t"`
}

// HealthResponse answers a health ping.
type HealthResponse struct {
	ID     string `msgpack:"id"`
	Status string `msgpack:"status"`
	Quotes int    `msgpack:"quotes"`
	Served uint64 `msgpack:"served"`
}

// ScoreError holds basic error information for failed requests
type ScoreError struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
