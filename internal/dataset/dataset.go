// Package dataset holds the pieces shared by the three loaders: the
// error conditions they must distinguish, tab-delimited reading, and
// string interning for categorical columns.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

var (
	// ErrMissingInput wraps unreadable or absent input files.
	ErrMissingInput = errors.New("missing input file")

	// ErrSchemaMismatch reports an absent expected column or a file whose
	// leading structure is not what the loader requires.
	ErrSchemaMismatch = errors.New("schema mismatch")
)

// Table is a fully loaded delimited file: lower-cased header names plus
// raw string rows in file order.
type Table struct {
	Header []string
	Rows   [][]string
}

// Col returns the index of a lower-cased column name, or an
// ErrSchemaMismatch naming the column.
func (t *Table) Col(name string) (int, error) {
	for i, h := range t.Header {
		if h == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: column %q not found", ErrSchemaMismatch, name)
}

// ReadTSV loads a tab-delimited file into memory. With skipPragma set, the
// first line must be a non-tabular pragma line (leading '#') and is
// discarded; its absence is a schema mismatch, not something to paper over.
func ReadTSV(path string, skipPragma bool) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("%w: %s: %v", ErrMissingInput, path, err)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '\t'
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	first, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %s is empty", ErrSchemaMismatch, path)
	}
	if skipPragma {
		if len(first) == 0 || !strings.HasPrefix(first[0], "#") {
			return nil, fmt.Errorf("%w: %s: expected a leading pragma line", ErrSchemaMismatch, path)
		}
		first, err = r.Read()
		if err != nil {
			return nil, fmt.Errorf("%w: %s has no header after pragma", ErrSchemaMismatch, path)
		}
	}

	header := make([]string, len(first))
	for i, h := range first {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		rows = append(rows, rec)
	}
	return &Table{Header: header, Rows: rows}, nil
}

// Interner deduplicates the values of categorical columns so that the
// millions of repeated gene symbols, cancer types and center codes in a
// registry release share backing storage.
type Interner struct {
	seen map[string]string
}

func NewInterner() *Interner {
	return &Interner{seen: make(map[string]string)}
}

// Intern returns the canonical copy of s.
func (in *Interner) Intern(s string) string {
	if v, ok := in.seen[s]; ok {
		return v
	}
	in.seen[s] = s
	return s
}

// Levels reports how many distinct values have been seen.
func (in *Interner) Levels() int { return len(in.seen) }
