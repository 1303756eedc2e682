package bundle

import (
	"fmt"

	"github.com/getmockd/httpintercept/pkg/intercept"
)

// Register loads the bundle at path and registers its items with opts.
// values override the template values defined in the file.
func Register(opts *intercept.Options, path string, values map[string]string) error {
	b, err := LoadFile(path)
	if err != nil {
		return err
	}
	return RegisterBundle(opts, b, values)
}

// RegisterBundle registers the items of b with opts. Nothing is registered
// if any item fails to convert.
func RegisterBundle(opts *intercept.Options, b *Bundle, values map[string]string) error {
	if opts == nil {
		return fmt.Errorf("%w: options cannot be nil", intercept.ErrInvalidArgument)
	}
	if b == nil {
		return fmt.Errorf("%w: bundle cannot be nil", intercept.ErrInvalidArgument)
	}

	builders, err := b.Builders(values)
	if err != nil {
		if b.Source != "" {
			return fmt.Errorf("%s: %w", b.Source, err)
		}
		return err
	}
	return opts.Register(builders...)
}
