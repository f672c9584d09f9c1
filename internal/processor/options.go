package processor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"

	"resizer/internal/codec"
	"resizer/internal/errs"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(validateQuality, ResizeOptions{})
	return v
}

func validateQuality(sl validator.StructLevel) {
	opts := sl.Current().Interface().(ResizeOptions)
	if !opts.Format.UsesQuality() {
		return
	}
	if opts.Quality < codec.MinQuality || opts.Quality > codec.MaxQuality {
		sl.ReportError(opts.Quality, "Quality", "Quality", "quality", "")
	}
}

// DefaultResizeOptions returns 800×600 JPEG at quality 85 keeping the
// aspect ratio.
func DefaultResizeOptions() ResizeOptions {
	var opts ResizeOptions
	_ = defaults.Set(&opts)
	return opts
}

// Validate reports every invalid field as a single configuration error.
func (o ResizeOptions) Validate() error {
	err := validate.Struct(o)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errs.New(errs.KindConfiguration, "validate options", err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return errs.Configuration("validate options", "%s", strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "min":
		return fmt.Sprintf("%s must be at least %s (got %v)", field, fe.Param(), fe.Value())
	case "max":
		return fmt.Sprintf("%s must be at most %s (got %v)", field, fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("format must be one of %s (got %q)", strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value())
	case "quality":
		return fmt.Sprintf("quality must be between %d and %d for jpeg (got %v)", codec.MinQuality, codec.MaxQuality, fe.Value())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func checkSources(sources []SourceImage) error {
	seen := make(map[string]struct{}, len(sources))
	for i, src := range sources {
		if src.ID == "" {
			return errs.Configuration("check sources", "source %d (%s) has no id", i, src.OriginalName)
		}
		if _, dup := seen[src.ID]; dup {
			return errs.Configuration("check sources", "duplicate source id %q", src.ID)
		}
		seen[src.ID] = struct{}{}
	}
	return nil
}
