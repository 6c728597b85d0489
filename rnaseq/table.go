// Copyright (C) The tcgastage Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

// Package rnaseq provides the table transformations used to turn TCGA
// RNA-seq expression data into labeled feature matrices: FPKM to TPM
// conversion, gene ID translation between namespaces, and cancer stage
// labeling from clinical annotations.
//
// All functions return new values and leave their inputs unmodified.
package rnaseq

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// IndexColumn is the column name that refers to a table's index
// rather than one of its body columns.
const IndexColumn = "index"

// Table is a string-typed table with a row index, as read from a CSV
// file whose first column is the index.
type Table struct {
	IndexName string
	Index     []string
	Columns   []string
	Rows      [][]string // Rows[i][j] is the value of Columns[j] in row i
}

var nullValues = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"NaN":  true,
	"nan":  true,
	"NULL": true,
	"null": true,
	"None": true,
	"<NA>": true,
}

// IsNull reports whether s is one of the spellings of a missing value.
func IsNull(s string) bool {
	return nullValues[s]
}

// ReadTable reads a CSV table with a header row. If indexed is true,
// the first column becomes the index; otherwise the index is the row
// number.
func ReadTable(r io.Reader, indexed bool) (*Table, error) {
	rdr := csv.NewReader(r)
	rdr.FieldsPerRecord = -1
	header, err := rdr.Read()
	if err == io.EOF {
		return nil, errors.New("empty input: no header row")
	} else if err != nil {
		return nil, err
	}
	t := &Table{IndexName: IndexColumn}
	if indexed {
		if len(header) < 1 {
			return nil, errors.New("header row has no columns")
		}
		t.IndexName = header[0]
		header = header[1:]
	}
	t.Columns = append([]string(nil), header...)
	for line := 2; ; line++ {
		rec, err := rdr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		if indexed {
			if len(rec) != len(t.Columns)+1 {
				return nil, fmt.Errorf("line %d: %d fields, expected %d", line, len(rec), len(t.Columns)+1)
			}
			t.Index = append(t.Index, rec[0])
			rec = rec[1:]
		} else {
			if len(rec) != len(t.Columns) {
				return nil, fmt.Errorf("line %d: %d fields, expected %d", line, len(rec), len(t.Columns))
			}
			t.Index = append(t.Index, fmt.Sprintf("%d", len(t.Index)))
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

// WriteCSV writes the table, index first, in the format accepted by
// ReadTable(r, true).
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	err := cw.Write(append([]string{t.IndexName}, t.Columns...))
	if err != nil {
		return err
	}
	rec := make([]string, len(t.Columns)+1)
	for i, row := range t.Rows {
		rec[0] = t.Index[i]
		copy(rec[1:], row)
		err = cw.Write(rec)
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of the named column in t.Columns,
// or -1 if there is no such column.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the table has a body column with the
// given name.
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// Column returns a copy of the named column's values. The name
// IndexColumn (or the table's IndexName) returns the index.
func (t *Table) Column(name string) ([]string, error) {
	if name == IndexColumn || (name == t.IndexName && !t.HasColumn(name)) {
		return append([]string(nil), t.Index...), nil
	}
	col := t.ColumnIndex(name)
	if col < 0 {
		return nil, &ValidationError{What: "column", Name: name, In: "table"}
	}
	vals := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		vals[i] = row[col]
	}
	return vals, nil
}

// requireColumns returns a ValidationError for the first name that is
// not a body column of t.
func (t *Table) requireColumns(in string, names ...string) error {
	for _, name := range names {
		if !t.HasColumn(name) {
			return &ValidationError{What: "column", Name: name, In: in}
		}
	}
	return nil
}

// ValidationError reports a missing column or value that a
// transformation requires.
type ValidationError struct {
	What string // "column", "project", ...
	Name string
	In   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %q not found in %s", e.What, e.Name, e.In)
}

// DegenerateSampleError reports sample columns whose values sum to
// zero (or a non-finite value), which makes per-sample normalization
// undefined.
type DegenerateSampleError struct {
	Samples []string
}

func (e *DegenerateSampleError) Error() string {
	if len(e.Samples) > 5 {
		return fmt.Sprintf("%d samples have non-positive or non-finite column sums, including %s", len(e.Samples), strings.Join(e.Samples[:5], ", "))
	}
	return fmt.Sprintf("samples have non-positive or non-finite column sums: %s", strings.Join(e.Samples, ", "))
}
