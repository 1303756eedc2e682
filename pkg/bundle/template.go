package bundle

import (
	"sort"
	"strings"
)

// mergeValues layers template value sets; later sets override earlier ones.
func mergeValues(sets ...map[string]string) map[string]string {
	merged := make(map[string]string)
	for _, set := range sets {
		for k, v := range set {
			merged[k] = v
		}
	}
	return merged
}

// templater replaces {token} placeholders. Unknown tokens are left as-is.
type templater struct {
	replacer *strings.Replacer
}

func newTemplater(values map[string]string) *templater {
	if len(values) == 0 {
		return &templater{}
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", values[k])
	}
	return &templater{replacer: strings.NewReplacer(pairs...)}
}

func (t *templater) apply(s string) string {
	if t.replacer == nil || !strings.Contains(s, "{") {
		return s
	}
	return t.replacer.Replace(s)
}

func (t *templater) applyHeaders(headers map[string][]string) map[string][]string {
	if headers == nil {
		return nil
	}
	out := make(map[string][]string, len(headers))
	for name, values := range headers {
		applied := make([]string, len(values))
		for i, v := range values {
			applied[i] = t.apply(v)
		}
		out[name] = applied
	}
	return out
}

// applyJSON replaces placeholders in every string leaf of a decoded JSON value.
func (t *templater) applyJSON(v interface{}) interface{} {
	switch x := v.(type) {
	case string:
		return t.apply(x)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(x))
		for k, val := range x {
			out[k] = t.applyJSON(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(x))
		for i, val := range x {
			out[i] = t.applyJSON(val)
		}
		return out
	default:
		return v
	}
}
