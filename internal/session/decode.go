package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrEmptyDocument is returned when a session document has no content.
var ErrEmptyDocument = errors.New("session document is empty")

// maxDocumentSize bounds how much of a session document is read.
const maxDocumentSize = 8 * 1024 * 1024

// LapCount is a lap or incident limit that the simulator reports either as
// a number or as the string "unlimited". Unlimited is false for numeric
// values.
type LapCount struct {
	Laps      int
	Unlimited bool
}

func parseLapCount(s string) (LapCount, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "unlimited") {
		return LapCount{Unlimited: true}, nil
	}
	// "25 laps" appears in some documents.
	s = strings.TrimSuffix(s, " laps")
	n, err := strconv.Atoi(s)
	if err != nil {
		return LapCount{}, fmt.Errorf("invalid lap count %q: %w", s, err)
	}
	return LapCount{Laps: n}, nil
}

func (l *LapCount) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("invalid lap count at line %d", node.Line)
	}
	if node.Value == "" {
		*l = LapCount{}
		return nil
	}
	v, err := parseLapCount(node.Value)
	if err != nil {
		return err
	}
	*l = v
	return nil
}

func (l *LapCount) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*l = LapCount{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, err := parseLapCount(s)
		if err != nil {
			return err
		}
		*l = v
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid lap count %s: %w", data, err)
	}
	*l = LapCount{Laps: n}
	return nil
}

func (l LapCount) MarshalJSON() ([]byte, error) {
	if l.Unlimited {
		return []byte(`"unlimited"`), nil
	}
	return []byte(strconv.Itoa(l.Laps)), nil
}

func (l LapCount) String() string {
	if l.Unlimited {
		return "unlimited"
	}
	return strconv.Itoa(l.Laps)
}

// Decode reads a session document. JSON is detected by a leading '{';
// anything else is parsed as the SDK's YAML session string.
func Decode(r io.Reader) (*Session, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read session document: %w", err)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("---")) {
		return nil, ErrEmptyDocument
	}

	var s Session
	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, fmt.Errorf("failed to parse session JSON: %w", err)
		}
		return &s, nil
	}
	if err := yaml.Unmarshal(trimmed, &s); err != nil {
		return nil, fmt.Errorf("failed to parse session YAML: %w", err)
	}
	return &s, nil
}
