package db

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DistanceCosine is the only metric the product index uses: similarity is
// reported as 1 - distance, which holds for cosine distance alone.
const DistanceCosine = "COSINE"

// HNSW defaults applied when ProductIndexSpec leaves them at zero.
const (
	DefaultHNSWM              = 16
	DefaultHNSWEFConstruction = 200
)

// IndexFieldType enumerates the FT field types of the product schema.
type IndexFieldType int

const (
	IndexFieldNumeric IndexFieldType = iota
	IndexFieldText
	IndexFieldVector
)

// IndexField is one attribute of the FT schema.
type IndexField struct {
	Name string
	Type IndexFieldType

	// NoStem keeps literal words in a TEXT field so infix matches see titles as written.
	NoStem bool

	// HNSW vector parameters; the vector is always FLOAT32 with cosine distance.
	Dim            int
	M              int
	EFConstruction int
}

// IndexDefinition is an FT index over hashes sharing a key prefix.
type IndexDefinition struct {
	Name   string
	Prefix string
	Fields []IndexField
}

// ProductIndexSpec holds the tunables of the product index.
type ProductIndexSpec struct {
	Name           string
	Prefix         string
	Dim            int
	M              int
	EFConstruction int
}

// ProductIndex returns the FT definition the catalog searches: the title for
// keyword matches, the deleted flag for pre-filtering and the embedding for KNN.
func ProductIndex(spec ProductIndexSpec) (*IndexDefinition, error) {
	m, ef := spec.M, spec.EFConstruction
	if m <= 0 {
		m = DefaultHNSWM
	}
	if ef <= 0 {
		ef = DefaultHNSWEFConstruction
	}

	def := &IndexDefinition{
		Name:   spec.Name,
		Prefix: spec.Prefix,
		Fields: []IndexField{
			{Name: FieldTitle, Type: IndexFieldText, NoStem: true},
			{Name: FieldDeleted, Type: IndexFieldNumeric},
			{Name: FieldVector, Type: IndexFieldVector, Dim: spec.Dim, M: m, EFConstruction: ef},
		},
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return def, nil
}

// Validate checks that the definition can be sent to FT.CREATE.
func (idx *IndexDefinition) Validate() error {
	if !IsValidIdentifier(idx.Name) {
		return fmt.Errorf("invalid index name %q", idx.Name)
	}
	if idx.Prefix == "" {
		return errors.New("key prefix is required")
	}
	if len(idx.Fields) == 0 {
		return errors.New("at least one field is required")
	}

	seen := make(map[string]struct{}, len(idx.Fields))
	for _, f := range idx.Fields {
		if f.Name == "" {
			return errors.New("field name is required")
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("duplicate field %q", f.Name)
		}
		seen[f.Name] = struct{}{}

		if f.Type == IndexFieldVector && f.Dim <= 0 {
			return fmt.Errorf("vector field %q needs a positive dimension, got %d", f.Name, f.Dim)
		}
	}
	return nil
}

// String renders the definition like the FT.CREATE command, for logs.
func (idx *IndexDefinition) String() string {
	var b strings.Builder
	b.WriteString("FT.CREATE " + idx.Name + " ON HASH PREFIX 1 " + idx.Prefix + " SCHEMA")
	for _, f := range idx.Fields {
		b.WriteString(" " + f.Name)
		switch f.Type {
		case IndexFieldNumeric:
			b.WriteString(" NUMERIC")
		case IndexFieldText:
			b.WriteString(" TEXT")
			if f.NoStem {
				b.WriteString(" NOSTEM")
			}
		case IndexFieldVector:
			b.WriteString(" VECTOR HNSW DIM " + strconv.Itoa(f.Dim))
		}
	}
	return b.String()
}

// IsValidIdentifier returns true if s matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isSpecial := r == '_' || r == ':' || r == '-'
		if !isAlpha && !isDigit && !isSpecial {
			return false
		}
	}
	return true
}
