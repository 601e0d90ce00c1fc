package record

import (
	"encoding/json"
	"fmt"
)

// Record is one submission or comment from a subreddit dump. Decoding keeps
// the original line's full JSON object alongside the lifted fields so that
// re-encoding preserves passthrough fields verbatim.
type Record struct {
	ID         string
	ParentID   string
	Subreddit  string
	Body       string
	Author     string
	CreatedUTC int64
	Deleted    bool

	// raw holds every field of the source object, keyed by name, exactly as
	// it appeared on the wire. Nil for records constructed in code.
	raw map[string]json.RawMessage
}

// ParseError reports a line the codec could not decode. Callers treat it as
// recoverable: skip the line, count it, keep reading.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// wireRecord is the typed view of the known fields.
type wireRecord struct {
	ID         string `json:"id"`
	ParentID   string `json:"parent_id,omitempty"`
	Subreddit  string `json:"subreddit,omitempty"`
	Body       string `json:"body"`
	Author     string `json:"author,omitempty"`
	CreatedUTC int64  `json:"created_utc,omitempty"`
	Deleted    bool   `json:"deleted,omitempty"`
}

// Decode parses one JSONL line into a Record. The line number is only used
// for error reporting.
func Decode(line []byte, lineNo int) (*Record, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(line, &raw); err != nil {
		return nil, &ParseError{Line: lineNo, Err: err}
	}

	var w wireRecord
	if err := json.Unmarshal(line, &w); err != nil {
		return nil, &ParseError{Line: lineNo, Err: err}
	}
	if w.ID == "" {
		return nil, &ParseError{Line: lineNo, Err: fmt.Errorf("missing required field %q", "id")}
	}

	return &Record{
		ID:         w.ID,
		ParentID:   w.ParentID,
		Subreddit:  w.Subreddit,
		Body:       w.Body,
		Author:     w.Author,
		CreatedUTC: w.CreatedUTC,
		Deleted:    w.Deleted,
		raw:        raw,
	}, nil
}

// Encode serializes the record back to a single JSON line (no trailing
// newline). Passthrough fields survive untouched; lifted fields win over
// stale raw values when the record was mutated in memory.
func (r *Record) Encode() ([]byte, error) {
	w := wireRecord{
		ID:         r.ID,
		ParentID:   r.ParentID,
		Subreddit:  r.Subreddit,
		Body:       r.Body,
		Author:     r.Author,
		CreatedUTC: r.CreatedUTC,
		Deleted:    r.Deleted,
	}
	typed, err := json.Marshal(w)
	if err != nil {
		return nil, err
	}

	if len(r.raw) == 0 {
		return typed, nil
	}

	var lifted map[string]json.RawMessage
	if err := json.Unmarshal(typed, &lifted); err != nil {
		return nil, err
	}

	merged := make(map[string]json.RawMessage, len(r.raw))
	for k, v := range r.raw {
		merged[k] = v
	}
	for k, v := range lifted {
		merged[k] = v
	}
	return json.Marshal(merged)
}
