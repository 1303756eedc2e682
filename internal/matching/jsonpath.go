package matching

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"github.com/ohler55/ojg/jp"
)

// JSONPathMatcher evaluates JSONPath conditions against a JSON request body.
// Every condition must hold for the body to match.
type JSONPathMatcher struct {
	conditions []jsonPathCondition
}

type jsonPathCondition struct {
	path     string
	expr     jp.Expr
	expected interface{}
}

// NewJSONPathMatcher parses each JSONPath expression up front. Expected
// values are compared with numeric coercion; a value of the form
// {"exists": bool} checks presence instead of equality.
func NewJSONPathMatcher(conditions map[string]interface{}) (*JSONPathMatcher, error) {
	paths := make([]string, 0, len(conditions))
	for path := range conditions {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	m := &JSONPathMatcher{conditions: make([]jsonPathCondition, 0, len(paths))}
	for _, path := range paths {
		expr, err := jp.ParseString(path)
		if err != nil {
			return nil, fmt.Errorf("invalid JSONPath expression %q: %w", path, err)
		}
		m.conditions = append(m.conditions, jsonPathCondition{
			path:     path,
			expr:     expr,
			expected: conditions[path],
		})
	}
	return m, nil
}

// Match reports whether body satisfies every condition. Bodies that are not
// valid JSON never match.
func (m *JSONPathMatcher) Match(ctx context.Context, body []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return false, nil
	}

	for _, c := range m.conditions {
		if !c.holds(data) {
			return false, nil
		}
	}
	return true, nil
}

func (c jsonPathCondition) holds(data interface{}) bool {
	results := c.expr.Get(data)

	if exists, ok := existenceCheck(c.expected); ok {
		return (len(results) > 0) == exists
	}

	// Wildcard paths may return several results; any equal one satisfies.
	for _, result := range results {
		if valuesEqual(result, c.expected) {
			return true
		}
	}
	return false
}

// existenceCheck recognizes {"exists": bool}.
func existenceCheck(expected interface{}) (exists bool, ok bool) {
	m, isMap := expected.(map[string]interface{})
	if !isMap || len(m) != 1 {
		return false, false
	}
	v, has := m["exists"]
	if !has {
		return false, false
	}
	b, isBool := v.(bool)
	return b, isBool
}

// valuesEqual compares a decoded JSON value with an expected value. JSON
// numbers decode as float64, so numeric values are compared as float64.
func valuesEqual(actual, expected interface{}) bool {
	if actual == nil || expected == nil {
		return actual == nil && expected == nil
	}

	if an, ok := toFloat64(actual); ok {
		if en, ok := toFloat64(expected); ok {
			return an == en
		}
		return false
	}

	return reflect.DeepEqual(actual, expected)
}

func toFloat64(v interface{}) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	}
	return 0, false
}

// ValidateJSONPathExpression validates a JSONPath expression at load time.
func ValidateJSONPathExpression(path string) error {
	if _, err := jp.ParseString(path); err != nil {
		return fmt.Errorf("invalid JSONPath expression %q: %w", path, err)
	}
	return nil
}
