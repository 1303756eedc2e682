package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/getmockd/httpintercept/pkg/bundle"
	"github.com/getmockd/httpintercept/pkg/cli/internal/output"
)

// registrationSummary is one row of `httpintercept list`.
type registrationSummary struct {
	Bundle   string `json:"bundle"`
	Item     string `json:"item"`
	Method   string `json:"method"`
	URL      string `json:"url"`
	Status   int    `json:"status"`
	Priority *int   `json:"priority,omitempty"`
	Custom   bool   `json:"custom,omitempty"`
	Skipped  bool   `json:"skipped,omitempty"`
}

func newListCommand(a *app) *cobra.Command {
	var (
		values      []string
		jsonOutput  bool
		showSkipped bool
	)

	cmd := &cobra.Command{
		Use:   "list [path|glob]...",
		Short: "List the registrations bundles produce",
		Example: `  httpintercept list bundles/*.json
  httpintercept list --set Host=localhost:8080 --json bundles/api.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			patterns, err := a.bundleArgs(args)
			if err != nil {
				return err
			}
			templateValues, err := parseValues(values)
			if err != nil {
				return err
			}
			bundles, err := bundle.LoadAll(patterns...)
			if err != nil {
				return err
			}

			rows, err := summarize(bundles, templateValues, showSkipped)
			if err != nil {
				return err
			}
			if jsonOutput {
				return output.JSON(a.stdout, rows)
			}
			return a.printRegistrations(rows)
		},
	}
	cmd.Flags().StringArrayVar(&values, "set", nil, "Template value as key=value (can be repeated)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	cmd.Flags().BoolVar(&showSkipped, "all", false, "Include skipped items")
	return cmd
}

func summarize(bundles []*bundle.Bundle, values map[string]string, showSkipped bool) ([]registrationSummary, error) {
	rows := make([]registrationSummary, 0)
	for _, b := range bundles {
		for i, item := range b.Items {
			if item == nil || (item.Skip && !showSkipped) {
				continue
			}
			builder, err := item.Builder(b.TemplateValues, values)
			if err != nil {
				return nil, fmt.Errorf("%s: items[%d] (%s): %w", b.Source, i, item.Name(), err)
			}
			reg, err := builder.Build()
			if err != nil {
				return nil, fmt.Errorf("%s: items[%d] (%s): %w", b.Source, i, item.Name(), err)
			}

			row := registrationSummary{
				Bundle:  b.Source,
				Item:    item.Name(),
				Method:  reg.Method(),
				URL:     reg.URL(),
				Status:  reg.StatusCode(),
				Custom:  reg.HasCustomMatcher(),
				Skipped: item.Skip,
			}
			if p, ok := reg.Priority(); ok {
				row.Priority = &p
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (a *app) printRegistrations(rows []registrationSummary) error {
	if len(rows) == 0 {
		fmt.Fprintln(a.stdout, "No registrations")
		return nil
	}

	w := output.Table(a.stdout)
	_, _ = fmt.Fprintln(w, "BUNDLE\tITEM\tMETHOD\tURL\tSTATUS\tPRIORITY")
	for _, r := range rows {
		url := r.URL
		if r.Custom {
			url = "(custom)"
		}
		priority := "-"
		if r.Priority != nil {
			priority = strconv.Itoa(*r.Priority)
		}
		item := r.Item
		if r.Skipped {
			item += " (skipped)"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n", r.Bundle, item, r.Method, url, r.Status, priority)
	}
	return w.Flush()
}
