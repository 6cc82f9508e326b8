// Package anthropictest provides a scripted Messages API server for tests:
// one response per server, either a JSON body or a sequence of SSE frames.
package anthropictest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
)

// Server simulates the provider's Messages endpoint.
type Server struct {
	httpServer *httptest.Server

	mu           sync.Mutex
	requestCount int
	lastPath     string
	lastBody     []byte
	lastHeaders  http.Header

	status  int
	body    any
	headers map[string]string
	frames  []string
}

// NewServer starts an unscripted server. Script it with RespondWith,
// RespondWithError, or StreamFrames before pointing a client at it.
func NewServer() *Server {
	s := &Server{
		status:  http.StatusInternalServerError,
		body:    map[string]string{"error": "mock server not scripted"},
		headers: make(map[string]string),
	}
	s.httpServer = httptest.NewServer(http.HandlerFunc(s.handler))
	return s
}

// URL returns the server's base URL.
func (s *Server) URL() string {
	return s.httpServer.URL
}

// Close shuts the server down.
func (s *Server) Close() {
	s.httpServer.Close()
}

// RequestCount returns how many requests the server has received.
func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requestCount
}

// LastRequestBody returns the body of the most recent request.
func (s *Server) LastRequestBody() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastBody
}

// LastPath returns the path of the most recent request.
func (s *Server) LastPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPath
}

// LastHeader returns a header value from the most recent request.
func (s *Server) LastHeader(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastHeaders == nil {
		return ""
	}
	return s.lastHeaders.Get(key)
}

// RespondWith scripts a JSON response.
func (s *Server) RespondWith(status int, body any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.body = body
	s.frames = nil
}

// RespondWithError scripts the provider's error envelope.
func (s *Server) RespondWithError(status int, errType, message string) {
	s.RespondWith(status, map[string]any{
		"type": "error",
		"error": map[string]any{
			"type":    errType,
			"message": message,
		},
	})
}

// SetHeader adds a response header (e.g. Retry-After).
func (s *Server) SetHeader(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.headers[key] = value
}

// StreamFrames scripts an SSE response. Each frame is written and flushed
// separately; build frames with the Event helpers below.
func (s *Server) StreamFrames(frames ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = frames
}

func (s *Server) handler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	s.requestCount++
	s.lastPath = r.URL.Path
	s.lastBody = body
	s.lastHeaders = r.Header.Clone()
	status := s.status
	respBody := s.body
	frames := append([]string(nil), s.frames...)
	headers := make(map[string]string, len(s.headers))
	for k, v := range s.headers {
		headers[k] = v
	}
	s.mu.Unlock()

	for key, value := range headers {
		w.Header().Set(key, value)
	}

	if len(frames) > 0 {
		s.streamFrames(w, frames)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(respBody)
}

func (s *Server) streamFrames(w http.ResponseWriter, frames []string) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	for _, frame := range frames {
		fmt.Fprint(w, frame)
		flusher.Flush()
	}
}

// Event renders one SSE frame. The payload's type field is what the stream
// decoder dispatches on; the event line mirrors it for fidelity.
func Event(eventType string, payload any) string {
	data, _ := json.Marshal(payload)
	return fmt.Sprintf("event: %s\ndata: %s\n\n", eventType, data)
}

// MessageStart builds the opening frame carrying the input token classes.
// The wire input_tokens excludes the cache classes, as the API reports it.
func MessageStart(inputTokens, cacheRead, cacheWrite int) string {
	return Event("message_start", map[string]any{
		"type": "message_start",
		"message": map[string]any{
			"id":    "msg_test",
			"type":  "message",
			"role":  "assistant",
			"model": "claude-sonnet-4-20250514",
			"usage": map[string]any{
				"input_tokens":                inputTokens,
				"output_tokens":               1,
				"cache_read_input_tokens":     cacheRead,
				"cache_creation_input_tokens": cacheWrite,
			},
		},
	})
}

// TextBlockStart opens a text content block.
func TextBlockStart(index int) string {
	return Event("content_block_start", map[string]any{
		"type":          "content_block_start",
		"index":         index,
		"content_block": map[string]any{"type": "text", "text": ""},
	})
}

// TextDelta builds a text fragment frame.
func TextDelta(index int, text string) string {
	return Event("content_block_delta", map[string]any{
		"type":  "content_block_delta",
		"index": index,
		"delta": map[string]any{"type": "text_delta", "text": text},
	})
}

// ToolBlockStart opens a tool_use content block.
func ToolBlockStart(index int, id, name string) string {
	return Event("content_block_start", map[string]any{
		"type":          "content_block_start",
		"index":         index,
		"content_block": map[string]any{"type": "tool_use", "id": id, "name": name},
	})
}

// InputJSONDelta builds a partial tool-input frame.
func InputJSONDelta(index int, fragment string) string {
	return Event("content_block_delta", map[string]any{
		"type":  "content_block_delta",
		"index": index,
		"delta": map[string]any{"type": "input_json_delta", "partial_json": fragment},
	})
}

// BlockStop closes a content block.
func BlockStop(index int) string {
	return Event("content_block_stop", map[string]any{
		"type":  "content_block_stop",
		"index": index,
	})
}

// MessageDelta builds the final-usage frame.
func MessageDelta(stopReason string, outputTokens int) string {
	return Event("message_delta", map[string]any{
		"type":  "message_delta",
		"delta": map[string]any{"stop_reason": stopReason},
		"usage": map[string]any{"output_tokens": outputTokens},
	})
}

// MessageStop builds the closing frame.
func MessageStop() string {
	return Event("message_stop", map[string]any{"type": "message_stop"})
}

// Ping builds a keepalive frame.
func Ping() string {
	return Event("ping", map[string]any{"type": "ping"})
}

// ErrorEvent builds an in-stream error frame.
func ErrorEvent(errType, message string) string {
	return Event("error", map[string]any{
		"type": "error",
		"error": map[string]any{
			"type":    errType,
			"message": message,
		},
	})
}

// MessageBody builds a non-streaming Messages response body.
func MessageBody(text string, inputTokens, outputTokens, cacheRead, cacheWrite int) map[string]any {
	return map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"model":       "claude-sonnet-4-20250514",
		"stop_reason": "end_turn",
		"content": []map[string]any{
			{"type": "text", "text": text},
		},
		"usage": map[string]any{
			"input_tokens":                inputTokens,
			"output_tokens":               outputTokens,
			"cache_read_input_tokens":     cacheRead,
			"cache_creation_input_tokens": cacheWrite,
		},
	}
}
