// Package message defines the cliplog control protocol spoken over the local
// IPC socket.
//
// All messages are newline-delimited JSON. Entry content is always
// base64-encoded so that clipboard text which is not valid UTF-8 survives the
// JSON round trip byte for byte. Each message is exactly one line: <json>\n
package message

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// Type identifies the kind of message.
type Type string

// Requests.
const (
	TypeList     Type = "LIST"
	TypeSearch   Type = "SEARCH"
	TypeGet      Type = "GET"
	TypeRecopy   Type = "RECOPY"
	TypeFavorite Type = "FAVORITE"
	TypeName     Type = "NAME"
	TypeNote     Type = "NOTE"
	TypeDelete   Type = "DELETE"
	TypeStatus   Type = "STATUS"
	TypeWatch    Type = "WATCH"
)

// Responses.
const (
	TypeEntries        Type = "ENTRIES"
	TypeEntry          Type = "ENTRY"
	TypeOK             Type = "OK"
	TypeStatusResponse Type = "STATUS_RESPONSE"
	TypeEvent          Type = "EVENT"
	TypeError          Type = "ERROR"
)

// Mutating reports whether a request changes the history.
func (t Type) Mutating() bool {
	switch t {
	case TypeRecopy, TypeFavorite, TypeName, TypeNote, TypeDelete:
		return true
	}
	return false
}

// Code classifies an ERROR response.
type Code string

const (
	CodeNotFound    Code = "not_found"
	CodeAmbiguous   Code = "ambiguous"
	CodeBadRequest  Code = "bad_request"
	CodeClipboard   Code = "clipboard"
	CodeUnavailable Code = "unavailable"
	CodeInternal    Code = "internal"
)

// Entry is a history entry on the wire. Content is base64-encoded.
type Entry struct {
	Ref          string    `json:"ref"`
	Content      string    `json:"content"`
	FirstSeenAt  time.Time `json:"first_seen_at"`
	LastCopiedAt time.Time `json:"last_copied_at"`
	CopyCount    int       `json:"copy_count"`
	Favorite     bool      `json:"favorite"`
	Name         string    `json:"name,omitempty"`
	Note         string    `json:"note,omitempty"`
}

// EncodeText base64-encodes clipboard text for the Content fields.
func EncodeText(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

// DecodeText reverses EncodeText.
func DecodeText(s string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("content decode: %w", err)
	}
	return string(b), nil
}

// Text returns the decoded content of the entry.
func (e Entry) Text() (string, error) { return DecodeText(e.Content) }

// Status describes the running daemon.
type Status struct {
	PID         int       `json:"pid"`
	Backend     string    `json:"backend"`
	HistoryPath string    `json:"history_path"`
	StartedAt   time.Time `json:"started_at"`
	Entries     int       `json:"entries"`
	Favorites   int       `json:"favorites"`
	Pending     int       `json:"pending"`
	Watchers    int       `json:"watchers"`
	Dirty       bool      `json:"dirty"`
	SaveError   string    `json:"save_error,omitempty"`
}

// Message is the top-level wire envelope.
type Message struct {
	// Always present
	Type Type `json:"type"`

	// Entry-targeting requests carry either a ref prefix or the exact
	// base64 content. GET carries Refs and answers in the same order.
	Ref     string   `json:"ref,omitempty"`
	Content string   `json:"content,omitempty"`
	Refs    []string `json:"refs,omitempty"`

	// LIST / SEARCH
	Term      string `json:"term,omitempty"`
	Favorites bool   `json:"favorites,omitempty"`

	// FAVORITE sets Favorite; NAME and NOTE set Value.
	Favorite bool   `json:"favorite,omitempty"`
	Value    string `json:"value,omitempty"`

	// ENTRIES / ENTRY / EVENT
	Entries []Entry `json:"entries,omitempty"`
	Entry   *Entry  `json:"entry,omitempty"`
	Event   string  `json:"event,omitempty"`

	// OK for DELETE
	Removed bool `json:"removed,omitempty"`

	// STATUS_RESPONSE
	Status *Status `json:"status,omitempty"`

	// ERROR
	Code  Code   `json:"code,omitempty"`
	Error string `json:"error,omitempty"`
}

// Encode serialises the message to JSON without a trailing newline.
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Decode deserialises a message from raw JSON bytes.
func Decode(b []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("message decode: %w", err)
	}
	return &m, nil
}

// Errorf builds an ERROR response.
func Errorf(code Code, format string, args ...any) *Message {
	return &Message{Type: TypeError, Code: code, Error: fmt.Sprintf(format, args...)}
}
