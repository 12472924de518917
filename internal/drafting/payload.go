package drafting

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ashureev/draft-studio/internal/domain"
)

// decodeObject parses a model reply that should hold a single JSON object.
// Markdown code fences around the object are tolerated.
func decodeObject(text string) (map[string]string, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("model reply is not a JSON object: %w", err)
	}

	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			out[k] = val
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(val)
		case []any:
			parts := make([]string, 0, len(val))
			for _, p := range val {
				if s, ok := p.(string); ok {
					parts = append(parts, s)
				}
			}
			out[k] = strings.Join(parts, "\n\n")
		}
	}
	return out, nil
}

// NormalizeCreate maps a create payload onto the fixed schema.
// Every schema key is present in the result; unknown keys are dropped.
func NormalizeCreate(data map[string]string) map[string]string {
	keys := SchemaKeys()
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		out[k] = data[k]
	}
	return out
}

// ExtractSection picks the regenerated content for section out of a payload.
// The requested key wins; otherwise a payload holding exactly one string is accepted.
func ExtractSection(data map[string]string, section domain.Section) (string, error) {
	if v, ok := data[string(section)]; ok {
		return v, nil
	}
	if len(data) == 1 {
		for _, v := range data {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w %q (keys: %d)", ErrSectionMissing, section, len(data))
}
