package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SchemaValidator validates a decoded element after JSON extraction.
// Returns nil if valid, or a descriptive error if invalid.
type SchemaValidator[T any] func(T) error

// ArraySpan returns the text from the first '[' to the last ']' of raw,
// inclusive. Prose before and after the array is ignored. Bracket pairs
// that appear in the prose itself are not disambiguated, so "see [1] ... [..]"
// yields a span starting at "[1]".
func ArraySpan(raw string) (string, bool) {
	start := strings.IndexByte(raw, '[')
	end := strings.LastIndexByte(raw, ']')
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return raw[start : end+1], true
}

// DecodeArray decodes an array span located by ArraySpan into a slice of T.
// If validator is non-nil, each element is validated.
func DecodeArray[T any](span string, validator SchemaValidator[T]) ([]T, error) {
	var result []T
	if err := json.Unmarshal([]byte(span), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}

	if validator != nil {
		for i, item := range result {
			if err := validator(item); err != nil {
				return nil, fmt.Errorf("%w: element %d: %v", ErrInvalidOutput, i, err)
			}
		}
	}
	return result, nil
}
