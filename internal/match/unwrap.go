package match

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PayloadError reports an evaluator payload that matched neither accepted
// shape. The payload is kept for logging.
type PayloadError struct {
	Payload string
	Reason  string
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("invalid evaluator payload: %s", e.Reason)
}

const fence = "```"

// Unwrap parses the evaluator verdict out of its payload. The payload is
// either a bare JSON object or a JSON object inside a fenced code block
// (any language tag after the opening fence is tolerated). Anything else is
// a PayloadError.
func Unwrap(payload string) (*Evaluation, error) {
	s := strings.TrimSpace(payload)

	switch {
	case strings.HasPrefix(s, "{"):
		return parseVerdict(s)

	case strings.HasPrefix(s, fence):
		inner, ok := stripFence(s)
		if !ok {
			return nil, &PayloadError{Payload: payload, Reason: "unterminated code fence"}
		}
		if !strings.HasPrefix(inner, "{") {
			return nil, &PayloadError{Payload: payload, Reason: "fenced block is not a JSON object"}
		}
		return parseVerdict(inner)

	default:
		return nil, &PayloadError{Payload: payload, Reason: "neither JSON object nor fenced block"}
	}
}

// stripFence removes the opening fence line (with optional language tag)
// and the closing fence from s.
func stripFence(s string) (string, bool) {
	s = strings.TrimPrefix(s, fence)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:] // drop the rest of the opening fence line, e.g. "json"
	}
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, fence) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimSuffix(s, fence)), true
}

func parseVerdict(s string) (*Evaluation, error) {
	var verdict struct {
		Score  *float64 `json:"score"`
		Review []string `json:"review"`
	}
	if err := json.Unmarshal([]byte(s), &verdict); err != nil {
		return nil, &PayloadError{Payload: s, Reason: err.Error()}
	}
	if verdict.Score == nil || verdict.Review == nil {
		return nil, &PayloadError{Payload: s, Reason: "missing score or review"}
	}
	return &Evaluation{Score: *verdict.Score, Review: verdict.Review}, nil
}
