package bundle

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// SupportedVersion is the only bundle format version understood by this package.
const SupportedVersion = 1

// Content formats for Item.ContentFormat.
const (
	ContentFormatString = "string"
	ContentFormatBase64 = "base64"
	ContentFormatJSON   = "json"
)

// Bundle is a collection of interception items loaded from one file.
type Bundle struct {
	ID             string            `json:"id,omitempty" yaml:"id,omitempty"`
	Comment        string            `json:"comment,omitempty" yaml:"comment,omitempty"`
	Version        int               `json:"version" yaml:"version"`
	TemplateValues map[string]string `json:"templateValues,omitempty" yaml:"templateValues,omitempty"`
	Items          []*Item           `json:"items" yaml:"items"`

	// Source is the file the bundle was loaded from, if any.
	Source string `json:"-" yaml:"-"`
}

// Item describes a single interception.
type Item struct {
	ID           string `json:"id,omitempty" yaml:"id,omitempty"`
	Comment      string `json:"comment,omitempty" yaml:"comment,omitempty"`
	Method       string `json:"method,omitempty" yaml:"method,omitempty"`
	URI          string `json:"uri" yaml:"uri"`
	Version      string `json:"version,omitempty" yaml:"version,omitempty"`
	Status       Status `json:"status,omitempty" yaml:"status,omitempty"`
	ReasonPhrase string `json:"reasonPhrase,omitempty" yaml:"reasonPhrase,omitempty"`
	Priority     *int   `json:"priority,omitempty" yaml:"priority,omitempty"`
	Skip         bool   `json:"skip,omitempty" yaml:"skip,omitempty"`

	RequestHeaders  map[string][]string `json:"requestHeaders,omitempty" yaml:"requestHeaders,omitempty"`
	ResponseHeaders map[string][]string `json:"responseHeaders,omitempty" yaml:"responseHeaders,omitempty"`
	ContentHeaders  map[string][]string `json:"contentHeaders,omitempty" yaml:"contentHeaders,omitempty"`

	ContentFormat string      `json:"contentFormat,omitempty" yaml:"contentFormat,omitempty"`
	ContentString string      `json:"contentString,omitempty" yaml:"contentString,omitempty"`
	ContentJSON   interface{} `json:"contentJson,omitempty" yaml:"contentJson,omitempty"`

	TemplateValues map[string]string `json:"templateValues,omitempty" yaml:"templateValues,omitempty"`

	IgnoreHost  bool `json:"ignoreHost,omitempty" yaml:"ignoreHost,omitempty"`
	IgnorePath  bool `json:"ignorePath,omitempty" yaml:"ignorePath,omitempty"`
	IgnoreQuery bool `json:"ignoreQuery,omitempty" yaml:"ignoreQuery,omitempty"`

	// Match is an expression replacing the structural criteria.
	Match string `json:"match,omitempty" yaml:"match,omitempty"`
	// MatchForm requires a URL-encoded request body containing these pairs.
	MatchForm map[string]string `json:"matchForm,omitempty" yaml:"matchForm,omitempty"`
	// MatchJSONPath requires a JSON request body satisfying these conditions.
	MatchJSONPath map[string]interface{} `json:"matchJsonPath,omitempty" yaml:"matchJsonPath,omitempty"`
}

// Name returns the item ID, or its method and URI when it has none.
func (i *Item) Name() string {
	if i.ID != "" {
		return i.ID
	}
	method := i.Method
	if method == "" {
		method = "GET"
	}
	return method + " " + i.URI
}

// Status is a response status written as a number ("404", 404) or a name
// ("NotFound", "Not Found").
type Status string

// UnmarshalJSON accepts both JSON numbers and strings.
func (s *Status) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*s = Status(n.String())
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("status must be a number or string: %w", err)
	}
	*s = Status(str)
	return nil
}

// Code resolves the status to a numeric code. An empty status is 200.
func (s Status) Code() (int, error) {
	if s == "" {
		return 200, nil
	}
	if code, err := strconv.Atoi(string(s)); err == nil {
		return code, nil
	}
	if code, ok := statusByName[normalizeStatusName(string(s))]; ok {
		return code, nil
	}
	return 0, fmt.Errorf("unknown status %q", string(s))
}
