package batch

// ItemStatus is the import outcome of a single catalog item.
type ItemStatus string

// Import item status values.
const (
	StatusOK ItemStatus = "ok"
	// StatusNoVector marks a product stored without an embedding. It stays
	// reachable through keyword search only.
	StatusNoVector ItemStatus = "no_vector"
	StatusError    ItemStatus = "error"
)

// Result is the outcome of importing one product.
type Result struct {
	id     string
	status ItemStatus
	err    error
}

// NewOK creates a result for a product stored with its embedding.
func NewOK(id string) Result { return Result{id: id, status: StatusOK} }

// NewNoVector creates a result for a product stored after its embedding failed.
func NewNoVector(id string, err error) Result {
	return Result{id: id, status: StatusNoVector, err: err}
}

// NewError creates a result for a product that was not stored.
func NewError(id string, err error) Result { return Result{id: id, status: StatusError, err: err} }

// ID returns the product identifier.
func (r Result) ID() string { return r.id }

// Status returns the import outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns the embedding or storage error, if any.
func (r Result) Err() error { return r.err }

// Stored reports whether the product reached the catalog.
func (r Result) Stored() bool { return r.status == StatusOK || r.status == StatusNoVector }

// Summary aggregates import outcomes.
type Summary struct {
	Total    int
	Embedded int
	NoVector int
	Failed   int
}

// Summarize counts results by status.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.status {
		case StatusOK:
			s.Embedded++
		case StatusNoVector:
			s.NoVector++
		default:
			s.Failed++
		}
	}
	return s
}
