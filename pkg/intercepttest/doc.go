// Package intercepttest wires an intercept.Options into a test.
//
// The Interceptor records every request sent through its client, fails the
// test on unexpected requests and routes log output through t.Log:
//
//	func TestFetchTerms(t *testing.T) {
//	    it := intercepttest.New(t)
//
//	    it.Stub("GET", "https://public.je-apis.com/terms").
//	        WithJSON(map[string]any{"Id": 1}).
//	        Once().
//	        Reply()
//
//	    resp, err := it.Client().Get("https://public.je-apis.com/terms")
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer resp.Body.Close()
//
//	    it.AssertCalled(t, "GET", "/terms")
//	}
//
// Paths in assertions may use {name} segments to match any value:
//
//	it.AssertCalledTimes(t, "DELETE", "/users/{id}", 2)
package intercepttest
