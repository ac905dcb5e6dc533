package client

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
)

// Event is one parsed frame of the message stream
type Event struct {
	Content string `json:"content,omitempty"`
	Done    bool   `json:"done,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Stream incrementally reconstructs a message stream from the response body.
// Bytes are buffered until a newline boundary, then each "data: " line is
// parsed as a JSON event. A Stream serves exactly one request and is not safe
// for concurrent use.
type Stream struct {
	rc    io.ReadCloser
	buf   bytes.Buffer
	chunk []byte
	text  strings.Builder
}

// NewStream wraps a response body. Callers normally get one from
// Client.SendMessage.
func NewStream(rc io.ReadCloser) *Stream {
	return &Stream{
		rc:    rc,
		chunk: make([]byte, 4096),
	}
}

// Recv returns the next event. Content deltas are accumulated into Text as a
// side effect. io.EOF is returned when the server closes the stream without a
// terminal event.
func (s *Stream) Recv() (Event, error) {
	for {
		if line, ok := s.nextLine(); ok {
			event, ok := parseEventLine(line)
			if !ok {
				continue
			}
			if event.Content != "" {
				s.text.WriteString(event.Content)
			}
			return event, nil
		}

		n, err := s.rc.Read(s.chunk)
		if n > 0 {
			s.buf.Write(s.chunk[:n])
			continue
		}
		if err != nil {
			return Event{}, err
		}
	}
}

// Text returns the concatenation of all content deltas received so far
func (s *Stream) Text() string {
	return s.text.String()
}

// Close releases the underlying response body
func (s *Stream) Close() error {
	return s.rc.Close()
}

// nextLine takes one complete line out of the buffer; bytes after the last
// newline stay buffered until more arrive
func (s *Stream) nextLine() (string, bool) {
	data := s.buf.Bytes()
	idx := bytes.IndexByte(data, '\n')
	if idx < 0 {
		return "", false
	}
	line := string(data[:idx])
	s.buf.Next(idx + 1)
	return strings.TrimSuffix(line, "\r"), true
}

/// parseEventLine parses a "data: " line; anything else, including malformed
// JSON, is skipped
func parseEventLine(line string) (Event, bool) {
	payload, ok := strings.CutPrefix(line, "data: ")
	if !ok {
		return Event{}, false
	}
	var event Event
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return Event{}, false
	}
	return event, true
}
