package grabcut

import "github.com/pkg/errors"

var (
	// ErrInvalidInput reports a malformed image, mask, sample set or option.
	// It is never retried.
	ErrInvalidInput = errors.New("grabcut: invalid input")
	// ErrGraphConstruction reports a flow graph that could not be built from
	// the energy model.
	ErrGraphConstruction = errors.New("grabcut: graph construction failed")
	// ErrSolver reports a min-cut oracle failure. No labeling is returned.
	ErrSolver = errors.New("grabcut: min-cut solver failed")
)

func invalidf(format string, args ...any) error {
	return errors.Wrapf(ErrInvalidInput, format, args...)
}
