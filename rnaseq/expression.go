// Copyright (C) The tcgastage Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package rnaseq

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// Expression is a gene-by-sample expression matrix.
type Expression struct {
	IndexName string   // header of the gene ID column, e.g. "Ensembl"
	Genes     []string // row IDs, in file order
	Samples   []string // column IDs (sample barcodes)

	// Values[g,s] is the expression of Genes[g] in Samples[s]. Nil
	// if there are no genes or no samples.
	Values *mat.Dense
}

func newExpression(indexName string, genes, samples []string, data []float64) *Expression {
	e := &Expression{IndexName: indexName, Genes: genes, Samples: samples}
	if len(genes) > 0 && len(samples) > 0 {
		e.Values = mat.NewDense(len(genes), len(samples), data)
	}
	return e
}

// Dims returns the number of genes and samples.
func (e *Expression) Dims() (genes, samples int) {
	return len(e.Genes), len(e.Samples)
}

// At returns the value for gene row g and sample column s.
func (e *Expression) At(g, s int) float64 {
	return e.Values.At(g, s)
}

// ReadExpression reads a CSV expression matrix. The first column holds
// gene IDs; each remaining column is one sample, named in the header.
// Null spellings (see IsNull) are read as NaN.
func ReadExpression(r io.Reader) (*Expression, error) {
	rdr := csv.NewReader(r)
	rdr.ReuseRecord = true
	header, err := rdr.Read()
	if err == io.EOF {
		return nil, errors.New("empty input: no header row")
	} else if err != nil {
		return nil, err
	}
	if len(header) < 1 {
		return nil, errors.New("header row has no columns")
	}
	indexName := header[0]
	samples := append([]string(nil), header[1:]...)
	var genes []string
	var data []float64
	for line := 2; ; line++ {
		rec, err := rdr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		genes = append(genes, rec[0])
		for i, s := range rec[1:] {
			if IsNull(s) {
				data = append(data, math.NaN())
				continue
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d, sample %q: %w", line, samples[i], err)
			}
			data = append(data, v)
		}
	}
	return newExpression(indexName, genes, samples, data), nil
}

// WriteCSV writes the matrix in the format accepted by ReadExpression.
func (e *Expression) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	err := cw.Write(append([]string{e.IndexName}, e.Samples...))
	if err != nil {
		return err
	}
	rec := make([]string, len(e.Samples)+1)
	for g, gene := range e.Genes {
		rec[0] = gene
		for s := range e.Samples {
			rec[s+1] = strconv.FormatFloat(e.At(g, s), 'g', -1, 64)
		}
		err = cw.Write(rec)
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// takeRows returns a new matrix whose row i is a copy of e's row
// rows[i], relabeled ids[i].
func (e *Expression) takeRows(rows []int, ids []string) *Expression {
	ncols := len(e.Samples)
	data := make([]float64, 0, len(rows)*ncols)
	if ncols > 0 {
		for _, r := range rows {
			data = append(data, e.Values.RawRowView(r)...)
		}
	}
	return newExpression(e.IndexName, append([]string(nil), ids...), append([]string(nil), e.Samples...), data)
}

// SelectGenes returns a new matrix containing, in e's row order,
// the rows whose gene ID satisfies keep.
func (e *Expression) SelectGenes(keep func(gene string) bool) *Expression {
	var rows []int
	var ids []string
	for g, gene := range e.Genes {
		if keep(gene) {
			rows = append(rows, g)
			ids = append(ids, gene)
		}
	}
	return e.takeRows(rows, ids)
}

// SelectSamples returns a new matrix whose columns are the given
// samples, in the given order. A sample listed more than once yields
// repeated columns. Requested samples that are not in e are skipped
// and returned in missing.
func (e *Expression) SelectSamples(samples []string) (sel *Expression, missing []string) {
	col := make(map[string]int, len(e.Samples))
	for s, name := range e.Samples {
		if _, dup := col[name]; !dup {
			col[name] = s
		}
	}
	var cols []int
	var names []string
	for _, name := range samples {
		s, ok := col[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		cols = append(cols, s)
		names = append(names, name)
	}
	data := make([]float64, 0, len(e.Genes)*len(cols))
	for g := range e.Genes {
		for _, s := range cols {
			data = append(data, e.At(g, s))
		}
	}
	return newExpression(e.IndexName, append([]string(nil), e.Genes...), names, data), missing
}
