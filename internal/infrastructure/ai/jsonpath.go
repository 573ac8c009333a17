package ai

import (
	"fmt"
	"strconv"
)

type pathKind int

const (
	pathField pathKind = iota
	pathIndex
)

type pathPart struct {
	kind  pathKind
	value string
}

// extractJSONPath extracts a string value from a decoded JSON document.
// Supported paths: "field", "field.nested", "field[0]", "field[0].nested".
func extractJSONPath(data map[string]interface{}, path string) (string, error) {
	var current interface{} = data

	for _, part := range parseJSONPath(path) {
		switch part.kind {
		case pathField:
			obj, ok := current.(map[string]interface{})
			if !ok {
				return "", fmt.Errorf("expected object at '%s'", part.value)
			}
			var found bool
			current, found = obj[part.value]
			if !found {
				return "", fmt.Errorf("field '%s' not found", part.value)
			}
		case pathIndex:
			arr, ok := current.([]interface{})
			if !ok {
				return "", fmt.Errorf("expected array at index %s", part.value)
			}
			idx, err := strconv.Atoi(part.value)
			if err != nil {
				return "", fmt.Errorf("bad index %q", part.value)
			}
			if idx < 0 || idx >= len(arr) {
				return "", fmt.Errorf("index %d out of bounds (len=%d)", idx, len(arr))
			}
			current = arr[idx]
		}
	}

	if str, ok := current.(string); ok {
		return str, nil
	}
	return "", fmt.Errorf("final value is not a string: %T", current)
}

// parseJSONPath turns "choices[0].message.content" into
// [{field choices} {index 0} {field message} {field content}].
func parseJSONPath(path string) []pathPart {
	var parts []pathPart
	current := ""

	for i := 0; i < len(path); i++ {
		switch ch := path[i]; ch {
		case '.':
			if current != "" {
				parts = append(parts, pathPart{kind: pathField, value: current})
				current = ""
			}
		case '[':
			if current != "" {
				parts = append(parts, pathPart{kind: pathField, value: current})
				current = ""
			}
			j := i + 1
			for j < len(path) && path[j] != ']' {
				j++
			}
			if j < len(path) {
				parts = append(parts, pathPart{kind: pathIndex, value: path[i+1 : j]})
				i = j
			}
		default:
			current += string(ch)
		}
	}
	if current != "" {
		parts = append(parts, pathPart{kind: pathField, value: current})
	}
	return parts
}
