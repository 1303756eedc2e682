package cli

import (
	"fmt"
	"strings"
)

// parseValues turns repeated key=value flags into template values.
func parseValues(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	values := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid template value %q (expected key=value)", pair)
		}
		values[k] = v
	}
	return values, nil
}

// parseHeaders turns repeated "Name: value" flags into header pairs.
func parseHeaders(pairs []string) ([][2]string, error) {
	headers := make([][2]string, 0, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, ":")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid header %q (expected name:value)", pair)
		}
		headers = append(headers, [2]string{k, strings.TrimSpace(v)})
	}
	return headers, nil
}
