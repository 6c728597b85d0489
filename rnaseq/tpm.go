// Copyright (C) The tcgastage Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package rnaseq

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// FPKMToTPM converts FPKM expression values to TPM: each sample column
// is rescaled so that it sums to 1e6, preserving the ratios between
// genes within the sample.
//
// A sample whose FPKM values sum to zero (or to a non-finite value)
// cannot be normalized. If strict is true, FPKMToTPM returns a
// *DegenerateSampleError listing every such sample. Otherwise the
// division is done anyway and the resulting NaN/Inf values are left
// in the output for the caller to deal with.
func FPKMToTPM(e *Expression, strict bool) (*Expression, error) {
	ngenes, nsamples := e.Dims()
	out := newExpression(e.IndexName, append([]string(nil), e.Genes...), append([]string(nil), e.Samples...), nil)
	if out.Values == nil {
		return out, nil
	}
	out.Values.Copy(e.Values)
	col := make([]float64, ngenes)
	var degenerate []string
	for s := 0; s < nsamples; s++ {
		mat.Col(col, s, e.Values)
		sum := floats.Sum(col)
		if sum <= 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
			degenerate = append(degenerate, e.Samples[s])
		}
		if strict && degenerate != nil {
			continue
		}
		for g, v := range col {
			col[g] = v / sum
		}
		floats.Scale(1e6, col)
		out.Values.SetCol(s, col)
	}
	if strict && degenerate != nil {
		return nil, &DegenerateSampleError{Samples: degenerate}
	}
	return out, nil
}
