package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/getmockd/httpintercept/pkg/bundle"
	"github.com/getmockd/httpintercept/pkg/intercept"
	"github.com/getmockd/httpintercept/pkg/metrics"
)

type matchFlags struct {
	method      string
	url         string
	headers     []string
	data        string
	values      []string
	timeout     time.Duration
	showMetrics bool
}

func newMatchCommand(a *app) *cobra.Command {
	f := &matchFlags{}

	cmd := &cobra.Command{
		Use:   "match --url URL [flags] [path|glob]...",
		Short: "Run a request through bundles and print the intercepted response",
		Long: `Register bundles and send one request through the interceptor.

Requests are never sent over the network: when no registration matches the
command fails.`,
		Example: `  httpintercept match --url https://public.je-apis.com/terms bundles/terms.json

  httpintercept match --method POST --url https://api.example.com/token \
    --header 'Content-Type: application/x-www-form-urlencoded' \
    --data 'grant_type=client_credentials' bundles/auth.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			patterns, err := a.bundleArgs(args)
			if err != nil {
				return err
			}
			return a.runMatch(cmd.Context(), f, patterns)
		},
	}
	cmd.Flags().StringVarP(&f.method, "method", "X", http.MethodGet, "HTTP method")
	cmd.Flags().StringVar(&f.url, "url", "", "Request URL (required)")
	cmd.Flags().StringArrayVarP(&f.headers, "header", "H", nil, "Request header as name:value (can be repeated)")
	cmd.Flags().StringVarP(&f.data, "data", "d", "", "Request body")
	cmd.Flags().StringArrayVar(&f.values, "set", nil, "Template value as key=value (can be repeated)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 30*time.Second, "Maximum time to wait for the response")
	cmd.Flags().BoolVar(&f.showMetrics, "metrics", false, "Print interception metrics after the response")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func (a *app) runMatch(ctx context.Context, f *matchFlags, patterns []string) error {
	values, err := parseValues(f.values)
	if err != nil {
		return err
	}
	headers, err := parseHeaders(f.headers)
	if err != nil {
		return err
	}

	collector := metrics.NewCollector()
	opts := intercept.NewOptions(
		intercept.WithThrowOnMissingRegistration(true),
		intercept.WithLogger(a.log),
		intercept.WithMetrics(collector),
	)

	bundles, err := bundle.LoadAll(patterns...)
	if err != nil {
		return err
	}
	for _, b := range bundles {
		if err := bundle.RegisterBundle(opts, b, values); err != nil {
			return fmt.Errorf("%s: %w", b.Source, err)
		}
	}
	a.log.Debug("registered bundles", "bundles", len(bundles), "registrations", opts.Count())

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	var body io.Reader
	if f.data != "" {
		body = strings.NewReader(f.data)
	}
	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(f.method), f.url, body)
	if err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	for _, h := range headers {
		req.Header.Add(h[0], h[1])
	}

	resp, err := opts.Transport(nil).RoundTrip(req)
	if err != nil {
		if f.showMetrics {
			_ = writeMetrics(a.stdout, collector)
		}
		return err
	}
	defer resp.Body.Close()

	if err := writeResponse(a.stdout, resp); err != nil {
		return err
	}
	if f.showMetrics {
		fmt.Fprintln(a.stdout)
		return writeMetrics(a.stdout, collector)
	}
	return nil
}

// writeResponse prints resp in HTTP/1.x wire style with sorted headers.
func writeResponse(w io.Writer, resp *http.Response) error {
	fmt.Fprintf(w, "%s %s\n", resp.Proto, resp.Status)

	names := make([]string, 0, len(resp.Header))
	for name := range resp.Header {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, v := range resp.Header[name] {
			fmt.Fprintf(w, "%s: %s\n", name, v)
		}
	}
	fmt.Fprintln(w)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	if len(data) > 0 {
		_, _ = w.Write(data)
		if data[len(data)-1] != '\n' {
			fmt.Fprintln(w)
		}
	}
	return nil
}

// writeMetrics prints the collector in the Prometheus text format.
func writeMetrics(w io.Writer, c *metrics.Collector) error {
	registry := prometheus.NewRegistry()
	if err := registry.Register(c); err != nil {
		return err
	}
	families, err := registry.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
