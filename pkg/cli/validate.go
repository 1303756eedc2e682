package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getmockd/httpintercept/pkg/bundle"
)

func newValidateCommand(a *app) *cobra.Command {
	var values []string

	cmd := &cobra.Command{
		Use:   "validate [path|glob]...",
		Short: "Validate bundles without registering them",
		Long: `Validate interception bundles.

This command checks:
  - JSON or YAML syntax
  - The bundle version
  - Schema validation (required fields, known properties, value types)
  - Item conversion (status names, content formats, URIs, matchers)`,
		Example: `  # Validate a single bundle
  httpintercept validate bundles/terms.json

  # Validate every bundle below a directory
  httpintercept validate 'bundles/**/*.{json,yaml,yml}'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			patterns, err := a.bundleArgs(args)
			if err != nil {
				return err
			}
			templateValues, err := parseValues(values)
			if err != nil {
				return err
			}
			return a.runValidate(patterns, templateValues)
		},
	}
	cmd.Flags().StringArrayVar(&values, "set", nil, "Template value as key=value (can be repeated)")
	return cmd
}

func (a *app) runValidate(patterns []string, values map[string]string) error {
	failed := 0
	for _, pattern := range patterns {
		paths, err := bundle.Glob(pattern)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			fmt.Fprintf(a.stderr, "Warning: %s matched no files\n", pattern)
			continue
		}

		for _, path := range paths {
			if err := a.validateFile(path, values); err != nil {
				failed++
				fmt.Fprintf(a.stdout, "✗ %v\n", err)
			}
		}
	}

	if failed > 0 {
		fmt.Fprintf(a.stdout, "\n%d bundle(s) failed validation\n", failed)
		return errSilent
	}
	return nil
}

func (a *app) validateFile(path string, values map[string]string) error {
	b, err := bundle.LoadFile(path)
	if err != nil {
		return err
	}
	builders, err := b.Builders(values)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	skipped := len(b.Items) - len(builders)
	fmt.Fprintf(a.stdout, "✓ %s: %d registration(s)", path, len(builders))
	if skipped > 0 {
		fmt.Fprintf(a.stdout, ", %d skipped", skipped)
	}
	fmt.Fprintln(a.stdout)

	if a.cfg.Verbose {
		for _, item := range b.Items {
			if item == nil {
				continue
			}
			state := "registered"
			if item.Skip {
				state = "skipped"
			}
			fmt.Fprintf(a.stdout, "    %s (%s)\n", item.Name(), state)
		}
	}
	a.log.Debug("validated bundle", "path", path, "id", b.ID, "items", len(b.Items))
	return nil
}
