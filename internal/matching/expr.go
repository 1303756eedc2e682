package matching

import (
	"context"
	"fmt"
	"net/http"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ExpressionMatcher is a whole-request predicate written in expr-lang.
//
// The program sees these variables:
//
//	method  string               request method
//	url     string               full request URL
//	scheme  string
//	host    string               host name without port
//	path    string
//	query   map[string][]string  parsed query parameters
//	header  map[string][]string  request headers, canonical names
//	body    string               request body
//
// Example: method == "POST" && path startsWith "/orders" && header["X-Tenant"][0] == "acme"
type ExpressionMatcher struct {
	source  string
	program *vm.Program
}

// CompileExpression compiles source into a matcher. The expression must
// evaluate to a boolean.
func CompileExpression(source string) (*ExpressionMatcher, error) {
	program, err := expr.Compile(source, expr.Env(requestEnv(nil, nil)), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile expression %q: %w", source, err)
	}
	return &ExpressionMatcher{source: source, program: program}, nil
}

// Source returns the expression text.
func (m *ExpressionMatcher) Source() string {
	return m.source
}

// Match evaluates the expression against r.
func (m *ExpressionMatcher) Match(ctx context.Context, r *http.Request) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	body, err := ReadBody(r)
	if err != nil {
		return false, err
	}

	out, err := expr.Run(m.program, requestEnv(r, body))
	if err != nil {
		return false, fmt.Errorf("eval %q: %w", m.source, err)
	}
	matched, _ := out.(bool)
	return matched, nil
}

// requestEnv builds the evaluation environment. A nil request yields the
// zero-valued environment used for type checking at compile time.
func requestEnv(r *http.Request, body []byte) map[string]interface{} {
	env := map[string]interface{}{
		"method": "",
		"url":    "",
		"scheme": "",
		"host":   "",
		"path":   "",
		"query":  map[string][]string{},
		"header": map[string][]string{},
		"body":   "",
	}
	if r == nil {
		return env
	}

	host := r.URL.Hostname()
	if host == "" {
		host = hostOnly(r.Host)
	}

	env["method"] = r.Method
	env["url"] = r.URL.String()
	env["scheme"] = r.URL.Scheme
	env["host"] = host
	env["path"] = r.URL.Path
	env["query"] = map[string][]string(r.URL.Query())
	env["header"] = map[string][]string(r.Header.Clone())
	env["body"] = string(body)
	return env
}
