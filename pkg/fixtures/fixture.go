package fixtures

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Exchange is one canned conversation step. Trigger is informational (what
// the test scripted the caller to say); Response is the text substituted
// for the model's reply.
type Exchange struct {
	Trigger  string `yaml:"trigger"`
	Response string `yaml:"response"`
}

// Fixture is one named bundle of canned responses.
type Fixture struct {
	// id is the identifier the fixture was loaded under (the file basename),
	// carried for error messages.
	id string

	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	// Seed is opaque seed data for the surrounding test harness. This layer
	// preserves it without interpreting it.
	Seed yaml.Node `yaml:"seed"`

	// Responses is the flat ordered response list, addressed by index.
	Responses []Exchange `yaml:"responses"`

	// Storyline is the legacy shape: caller-supplied key to its own ordered
	// exchange list, with document key order preserved.
	Storyline Storyline `yaml:"storyline"`

	// Operations maps operation names to JSON payloads for non-streaming
	// structured substitution.
	Operations map[string]any `yaml:"operations"`
}

// ID returns the identifier the fixture was loaded under.
func (f *Fixture) ID() string {
	return f.id
}

// ResponseCount returns how many responses index addressing can reach: the
// flat list when present, otherwise the first storyline key's list.
func (f *Fixture) ResponseCount() int {
	return len(f.indexedResponses())
}

// ResponseAt returns the canned response text at index. The flat responses
// list takes precedence; a fixture carrying only a storyline falls back to
// its document-order first key. An index outside [0, count) is a hard
// error, not a clamp.
func (f *Fixture) ResponseAt(index int) (string, error) {
	responses := f.indexedResponses()
	if index < 0 || index >= len(responses) {
		return "", &IndexError{ID: f.id, Index: index, Count: len(responses)}
	}
	return responses[index].Response, nil
}

// StorylineResponseAt returns the canned response at index within the named
// storyline key's list.
func (f *Fixture) StorylineResponseAt(key string, index int) (string, error) {
	exchanges, ok := f.Storyline.Get(key)
	if !ok {
		return "", &KeyError{ID: f.id, Key: key, Available: f.Storyline.Keys()}
	}
	if index < 0 || index >= len(exchanges) {
		return "", &IndexError{ID: f.id, Index: index, Count: len(exchanges)}
	}
	return exchanges[index].Response, nil
}

// OperationPayload returns the JSON-stringified payload registered for an
// operation name. The boolean reports whether the operation was present;
// absence is not an error, it routes the caller to its null path.
func (f *Fixture) OperationPayload(operation string) (string, bool, error) {
	payload, ok := f.Operations[operation]
	if !ok {
		return "", false, nil
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", false, fmt.Errorf("fixture %q operation %q payload is not JSON-encodable: %w",
			f.id, operation, err)
	}
	return string(encoded), true, nil
}

// indexedResponses resolves which list index addressing reads from.
func (f *Fixture) indexedResponses() []Exchange {
	if len(f.Responses) > 0 {
		return f.Responses
	}
	if first, ok := f.Storyline.FirstKey(); ok {
		exchanges, _ := f.Storyline.Get(first)
		return exchanges
	}
	return nil
}

// Storyline is an insertion-ordered map of key to exchange list. YAML maps
// lose document order under plain decoding, and the legacy first-key
// fallback depends on it, so the keys are captured during unmarshal.
type Storyline struct {
	keys    []string
	entries map[string][]Exchange
}

// UnmarshalYAML decodes a mapping node, preserving document key order.
func (s *Storyline) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("storyline must be a map of key to exchange list")
	}

	s.keys = nil
	s.entries = make(map[string][]Exchange, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		var key string
		if err := node.Content[i].Decode(&key); err != nil {
			return fmt.Errorf("storyline key is not a string: %w", err)
		}

		var exchanges []Exchange
		if err := node.Content[i+1].Decode(&exchanges); err != nil {
			return fmt.Errorf("storyline key %q: %w", key, err)
		}

		s.keys = append(s.keys, key)
		s.entries[key] = exchanges
	}

	return nil
}

// FirstKey returns the document-order first key.
func (s *Storyline) FirstKey() (string, bool) {
	if len(s.keys) == 0 {
		return "", false
	}
	return s.keys[0], true
}

// Get returns the exchange list for a key.
func (s *Storyline) Get(key string) ([]Exchange, bool) {
	exchanges, ok := s.entries[key]
	return exchanges, ok
}

// Keys returns the storyline keys in document order.
func (s *Storyline) Keys() []string {
	return s.keys
}

// Len returns the number of storyline keys.
func (s *Storyline) Len() int {
	return len(s.keys)
}
