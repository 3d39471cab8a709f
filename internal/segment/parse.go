package segment

import (
	"encoding/json"
	"fmt"

	"github.com/daybrief/digest-cli/internal/model"
)

// ContractError reports an oracle reply that violates the segmentation
// contract. Raw retains the full response text for diagnosis; the batch is
// left untouched and retried wholesale on the next run.
type ContractError struct {
	Reason string
	Raw    string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("oracle contract violation: %s", e.Reason)
}

// OracleSegment is one story in the oracle's reply.
type OracleSegment struct {
	Title           string   `json:"title"`
	Summary         string   `json:"summary"`
	Content         string   `json:"content"`
	Topics          []string `json:"topics"`
	ImportanceScore float64  `json:"importance_score"`
	SourceIndices   []int    `json:"source_indices"`
}

// OracleResult is the decoded and validated segmentation reply.
type OracleResult struct {
	Segments []OracleSegment `json:"segments"`
}

// ParseResponse extracts the first balanced JSON object from the oracle's
// free text, decodes it, and validates every field the pipeline will trust.
// Any failure returns a *ContractError carrying the raw text.
func ParseResponse(raw string) (*OracleResult, error) {
	obj, ok := extractJSON(raw)
	if !ok {
		return nil, &ContractError{Reason: "no JSON object found in response", Raw: raw}
	}

	var result OracleResult
	if err := json.Unmarshal([]byte(obj), &result); err != nil {
		return nil, &ContractError{Reason: fmt.Sprintf("response does not match schema: %v", err), Raw: raw}
	}

	if len(result.Segments) == 0 {
		return nil, &ContractError{Reason: "response contains no segments", Raw: raw}
	}

	for i := range result.Segments {
		seg := &result.Segments[i]
		if seg.Title == "" {
			return nil, &ContractError{Reason: fmt.Sprintf("segment %d has no title", i), Raw: raw}
		}
		if seg.Summary == "" {
			return nil, &ContractError{Reason: fmt.Sprintf("segment %d has no summary", i), Raw: raw}
		}
		if seg.ImportanceScore < 0 || seg.ImportanceScore > 1 {
			return nil, &ContractError{
				Reason: fmt.Sprintf("segment %d importance_score %v outside [0,1]", i, seg.ImportanceScore),
				Raw:    raw,
			}
		}
		// Closed taxonomy: unknown topics are dropped, not fatal.
		seg.Topics = model.FilterTopics(seg.Topics)
	}

	return &result, nil
}

// extractJSON returns the first balanced JSON object in text. The scan is
// string- and escape-aware so braces inside string values, or prose after
// the object, do not break extraction. A first-brace/last-brace heuristic
// is not enough here: the oracle may append commentary containing braces.
func extractJSON(text string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i, r := range text {
		if start >= 0 && inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}

		switch r {
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start >= 0 {
				depth--
				if depth == 0 {
					return text[start : i+1], true
				}
			}
		case '"':
			if start >= 0 {
				inString = true
			}
		}
	}

	return "", false
}
