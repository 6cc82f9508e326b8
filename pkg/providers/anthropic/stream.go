package anthropic

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"mercator-hq/callisto/pkg/providers"
)

// Stream reads Server-Sent Events from a Messages API response body. It
// parses SSE framing only; interpreting the event sequence belongs to the
// caller.
type Stream struct {
	provider string
	body     io.ReadCloser
	scanner  *bufio.Scanner
	closed   bool
}

// Large tool inputs arrive as single data lines, so the scanner needs more
// headroom than the bufio default.
const maxEventSize = 1024 * 1024

func newStream(provider string, body io.ReadCloser) *Stream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), maxEventSize)

	return &Stream{
		provider: provider,
		body:     body,
		scanner:  scanner,
	}
}

// Next reads the next event from the stream. It returns io.EOF when the
// server closes the stream. Server-reported error events are returned as
// events, not errors, so the caller can record them before failing.
func (s *Stream) Next(ctx context.Context) (*ServerEvent, error) {
	if s.closed {
		return nil, io.EOF
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		eventType, data, err := s.readEvent()
		if err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, &providers.StreamError{
				Provider: s.provider,
				Message:  "failed to read event stream",
				Cause:    err,
			}
		}

		if eventType == "" && data == "" {
			continue
		}

		var event ServerEvent
		if data != "" {
			if err := json.Unmarshal([]byte(data), &event); err != nil {
				return nil, &providers.ParseError{
					Provider:    s.provider,
					RawResponse: data,
					Cause:       fmt.Errorf("failed to parse stream event: %w", err),
				}
			}
		}
		if event.Type == "" {
			event.Type = eventType
		}

		return &event, nil
	}
}

// readEvent reads one SSE event: accumulated field lines up to a blank
// line. Multi-line data fields are joined with newlines per the SSE spec.
func (s *Stream) readEvent() (string, string, error) {
	var eventType string
	var dataLines []string

	for s.scanner.Scan() {
		line := s.scanner.Text()

		// Blank line terminates the event
		if line == "" {
			if eventType != "" || len(dataLines) > 0 {
				break
			}
			continue
		}

		if strings.HasPrefix(line, "event: ") {
			eventType = strings.TrimPrefix(line, "event: ")
		} else if strings.HasPrefix(line, "data: ") {
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		}
		// Other SSE fields (id, retry, comments) are ignored
	}

	if err := s.scanner.Err(); err != nil {
		return "", "", err
	}

	if eventType == "" && len(dataLines) == 0 {
		return "", "", io.EOF
	}

	return eventType, strings.Join(dataLines, "\n"), nil
}

// Close closes the underlying response body. Safe to call more than once.
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}
