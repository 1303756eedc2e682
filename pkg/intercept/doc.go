// Package intercept stubs outgoing HTTP requests for tests.
//
// Interceptions are configured with a Builder and stored in an Options
// registry. The registry's Transport replaces the transport of an
// *http.Client: a request is answered by the first matching registration,
// handed to a missing-registration hook, rejected with a
// *NotInterceptedError, or sent to the inner transport.
//
// Basic usage:
//
//	opts := intercept.NewOptions(intercept.WithThrowOnMissingRegistration(true))
//	err := opts.Register(intercept.NewBuilder().
//		ForGet().
//		ForURLString("https://api.example.com/users/1").
//		WithJSONContent(map[string]any{"id": 1, "name": "Alice"}))
//	if err != nil {
//		return err
//	}
//	client := opts.Client()
//	resp, err := client.Get("https://api.example.com/users/1")
//
// Registrations are looked up by priority, lower first, with registrations
// that have a priority tried before those without; ties go to the one
// registered first. A registration with the same match key as an existing
// one replaces it.
//
// BeginScope snapshots the table so a test can add registrations and have
// them discarded when the scope is closed:
//
//	scope := opts.BeginScope()
//	defer scope.Close()
package intercept
