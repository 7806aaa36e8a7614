package spec

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/google/go-containerregistry/pkg/name"

	oerrors "github.com/transfigure/cli/internal/errors"
)

//go:embed schema.cue
var schemaSource []byte

// Validator checks decoded tables against the embedded CUE schema.
type Validator struct {
	ctx      *cue.Context
	workload cue.Value
}

// NewValidator compiles the embedded schema.
func NewValidator() (*Validator, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileBytes(schemaSource, cue.Filename("schema.cue"))
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling schema: %w", schema.Err())
	}
	workload := schema.LookupPath(cue.ParsePath("#Workload"))
	if workload.Err() != nil {
		return nil, fmt.Errorf("looking up #Workload: %w", workload.Err())
	}
	return &Validator{ctx: ctx, workload: workload}, nil
}

// Validate checks the field shapes of raw, a table decoded from file.
// Only the first problem is reported.
func (v *Validator) Validate(raw map[string]any, file string) error {
	value := v.ctx.Encode(raw)
	if value.Err() != nil {
		return oerrors.NewValidationError(value.Err().Error(), file, "", "")
	}
	if err := v.workload.Unify(value).Validate(cue.Concrete(true)); err != nil {
		errs := cueerrors.Errors(err)
		field := ""
		msg := err.Error()
		if len(errs) > 0 {
			field = strings.Join(errs[0].Path(), ".")
			format, args := errs[0].Msg()
			msg = fmt.Sprintf(format, args...)
		}
		return oerrors.NewValidationError(msg, file, field, "Check the expression syntax for this field.")
	}

	if image, ok := raw["image"].(string); ok && image != "" {
		if _, err := name.ParseReference(image, name.WeakValidation); err != nil {
			return oerrors.NewValidationError(err.Error(), file, "image", "Use [registry/][group/]repository[:tag].")
		}
	}
	return nil
}

var defaultValidator = sync.OnceValues(NewValidator)

// Validate checks raw against the embedded schema.
func Validate(raw map[string]any, file string) error {
	v, err := defaultValidator()
	if err != nil {
		return err
	}
	return v.Validate(raw, file)
}
