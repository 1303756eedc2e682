package bundle

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/getmockd/httpintercept/pkg/intercept"
)

var statusByName = func() map[string]int {
	m := make(map[string]int)
	for code := 100; code < 600; code++ {
		if text := http.StatusText(code); text != "" {
			m[normalizeStatusName(text)] = code
		}
	}
	return m
}()

// normalizeStatusName reduces "Not Found", "NotFound" and "not_found" to one form.
func normalizeStatusName(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Builders converts every item that is not skipped into a builder. Template
// values from the item are overridden by the bundle's, which are overridden
// by values.
func (b *Bundle) Builders(values map[string]string) ([]*intercept.Builder, error) {
	builders := make([]*intercept.Builder, 0, len(b.Items))
	for i, item := range b.Items {
		if item == nil || item.Skip {
			continue
		}
		builder, err := item.Builder(b.TemplateValues, values)
		if err != nil {
			return nil, fmt.Errorf("items[%d] (%s): %w", i, item.Name(), err)
		}
		builders = append(builders, builder)
	}
	return builders, nil
}

// Builder converts the item into a builder. Template values are layered in
// order: the item's own, then each of sets.
func (i *Item) Builder(sets ...map[string]string) (*intercept.Builder, error) {
	t := newTemplater(mergeValues(append([]map[string]string{i.TemplateValues}, sets...)...))

	method := i.Method
	if method == "" {
		method = http.MethodGet
	}
	status, err := i.Status.Code()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBundle, err)
	}

	b := intercept.NewBuilder().
		ForMethod(method).
		ForURLString(t.apply(i.URI)).
		IgnoringHost(i.IgnoreHost).
		IgnoringPath(i.IgnorePath).
		IgnoringQuery(i.IgnoreQuery).
		ForRequestHeaders(t.applyHeaders(i.RequestHeaders)).
		WithResponseHeaders(t.applyHeaders(i.ResponseHeaders)).
		WithContentHeaders(t.applyHeaders(i.ContentHeaders)).
		WithStatus(status).
		WithReasonPhrase(t.apply(i.ReasonPhrase)).
		WithProtocolVersion(i.Version)

	if i.Priority != nil {
		b.WithPriority(*i.Priority)
	}

	content, err := i.content(t)
	if err != nil {
		return nil, err
	}
	if content != nil {
		b.WithContentBytes(content)
	}

	if i.Match != "" {
		b.ForExpression(i.Match)
	}
	if i.MatchForm != nil {
		form := make(map[string]string, len(i.MatchForm))
		for k, v := range i.MatchForm {
			form[k] = t.apply(v)
		}
		b.ForFormContent(form)
	}
	if i.MatchJSONPath != nil {
		conditions, _ := t.applyJSON(i.MatchJSONPath).(map[string]interface{})
		b.ForJSONContent(conditions)
	}

	if err := b.Err(); err != nil {
		return nil, err
	}
	return b, nil
}

// content decodes the response body according to the content format. A
// missing format is inferred from which content field is set.
func (i *Item) content(t *templater) ([]byte, error) {
	format := strings.ToLower(i.ContentFormat)
	if format == "" {
		switch {
		case i.ContentJSON != nil:
			format = ContentFormatJSON
		case i.ContentString != "":
			format = ContentFormatString
		default:
			return nil, nil
		}
	}

	switch format {
	case ContentFormatString:
		return []byte(t.apply(i.ContentString)), nil
	case ContentFormatBase64:
		data, err := base64.StdEncoding.DecodeString(i.ContentString)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid base64 content: %v", ErrInvalidBundle, err)
		}
		return data, nil
	case ContentFormatJSON:
		if i.ContentJSON == nil {
			return nil, nil
		}
		data, err := json.Marshal(t.applyJSON(i.ContentJSON))
		if err != nil {
			return nil, fmt.Errorf("%w: invalid JSON content: %v", ErrInvalidBundle, err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownContentFormat, i.ContentFormat)
	}
}
