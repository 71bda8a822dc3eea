package tearcheck

import (
	"errors"
	"fmt"

	"github.com/llxisdsh/pb"
)

// Pathway is an update operation producing a fresh Pair from the
// current one. All pathways must be observably identical to
// Pair.Advance when single-threaded.
type Pathway func(Pair) (Pair, error)

// pathways maps pathway names to implementations. Lookups are
// lock-free; registration happens at init (and in tests).
var pathways pb.MapOf[string, Pathway]

func init() {
	Register("advance", Pair.Advance)
	Register("advance-staged", Pair.AdvanceStaged)
}

// Register makes a pathway resolvable by name. A later registration
// under the same name replaces the earlier one.
func Register(name string, fn Pathway) {
	pathways.Store(name, fn)
}

// Resolve returns the pathway registered under name. The harness
// resolves its handle exactly once at construction and then invokes
// through it, so the indirect call path is exercised on every update
// while resolution cost is paid up front.
func Resolve(name string) (Pathway, error) {
	fn, ok := pathways.Load(name)
	if !ok {
		return nil, &HandleError{Name: name, Err: errUnknownPathway}
	}
	return fn, nil
}

var errUnknownPathway = errors.New("not registered")

// HandleError reports a failure to resolve a pathway handle, or an
// error that surfaced through an indirect invocation. Fatal, never
// retried.
type HandleError struct {
	Name string
	Err  error
}

func (e *HandleError) Error() string {
	return fmt.Sprintf("pathway %q: %v", e.Name, e.Err)
}

func (e *HandleError) Unwrap() error { return e.Err }
