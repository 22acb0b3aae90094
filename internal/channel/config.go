package channel

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DecodeConfigMap decodes a JSON object, treating null or empty input as an empty map.
func DecodeConfigMap(raw []byte) (map[string]any, error) {
	out := map[string]any{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

// ReadString returns the first non-empty value among keys, stringifying non-string values.
func ReadString(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		value, ok := raw[key]
		if !ok || value == nil {
			continue
		}
		var s string
		switch v := value.(type) {
		case string:
			s = v
		case float64:
			s = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			s = fmt.Sprint(v)
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

// RequireFields returns a copy of raw with the named fields trimmed, or an
// error naming the first missing one.
func RequireFields(raw map[string]any, fields ...string) (map[string]any, error) {
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			v = strings.TrimSpace(s)
		}
		out[k] = v
	}
	for _, field := range fields {
		if ReadString(out, field) == "" {
			return nil, fmt.Errorf("%s is required", field)
		}
	}
	return out, nil
}
