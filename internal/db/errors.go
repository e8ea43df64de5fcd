package db

import "errors"

var (
	// ErrKeyNotFound is returned by KVStore.Get on a cache miss.
	ErrKeyNotFound = errors.New("db: key not found")
	// ErrIndexNotFound means the FT index is missing; the product index was never created or was dropped.
	ErrIndexNotFound = errors.New("db: index not found")
	// ErrIndexExists is returned by CreateIndex when the name is taken.
	ErrIndexExists = errors.New("db: index already exists")
)

// Redis operations, named after the command sent.
const (
	OpCreateIndex = "FT.CREATE"
	OpDropIndex   = "FT.DROPINDEX"
	OpIndexInfo   = "FT.INFO"
	OpSearch      = "FT.SEARCH"
	OpHSet        = "HSET"
	OpExists      = "EXISTS"
	OpGet         = "GET"
	OpSet         = "SET"
)

// Postgres operations, named after the statement kind and target.
const (
	OpSelectKNN     = "SELECT knn"
	OpSelectKeyword = "SELECT keyword"
	OpUpsert        = "INSERT products"
	OpClear         = "DELETE products"
	OpMarkDeleted   = "UPDATE products"
)

// Error tags a driver failure with the operation that produced it.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + ": unknown error"
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// OpOf returns the operation of the first *Error in err's chain, or "".
func OpOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Op
	}
	return ""
}
