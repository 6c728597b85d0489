// Copyright (C) The tcgastage Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package tcgastage

import (
	"fmt"
	"io"

	"github.com/kshedden/gonpy"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

// writeNumpyFloat64 writes out as a rows×cols float64 array to fnm,
// or to stdout if fnm is "-".
func writeNumpyFloat64(fnm string, stdout io.Writer, out []float64, rows, cols int) error {
	log.WithFields(log.Fields{
		"filename": fnm,
		"rows":     rows,
		"cols":     cols,
		"bytes":    rows * cols * 8,
	}).Infof("writing numpy: %s", fnm)
	return writeOutput(fnm, stdout, func(w io.Writer) error {
		npw, err := gonpy.NewWriter(nopCloser{w})
		if err != nil {
			return err
		}
		npw.Shape = []int{rows, cols}
		return npw.WriteFloat64(out)
	})
}

func writeNumpyInt32(fnm string, stdout io.Writer, out []int32) error {
	log.WithFields(log.Fields{
		"filename": fnm,
		"rows":     len(out),
		"bytes":    len(out) * 4,
	}).Infof("writing numpy: %s", fnm)
	return writeOutput(fnm, stdout, func(w io.Writer) error {
		npw, err := gonpy.NewWriter(nopCloser{w})
		if err != nil {
			return err
		}
		npw.Shape = []int{len(out)}
		return npw.WriteInt32(out)
	})
}

// writeNumpyMatrix writes m as a 2-D float64 array. A nil m is written
// as an empty rows×cols array.
func writeNumpyMatrix(fnm string, stdout io.Writer, m *mat.Dense, rows, cols int) error {
	out := make([]float64, 0, rows*cols)
	if m != nil {
		for i := 0; i < rows; i++ {
			out = append(out, m.RawRowView(i)...)
		}
	}
	return writeNumpyFloat64(fnm, stdout, out, rows, cols)
}

// readNumpyMatrix reads a 2-D float64 array.
func readNumpyMatrix(rdr io.Reader) (*mat.Dense, error) {
	npr, err := gonpy.NewReader(rdr)
	if err != nil {
		return nil, err
	}
	if len(npr.Shape) != 2 {
		return nil, fmt.Errorf("expected 2-D array, got shape %v", npr.Shape)
	}
	data, err := npr.GetFloat64()
	if err != nil {
		return nil, err
	}
	rows, cols := npr.Shape[0], npr.Shape[1]
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("empty array, shape %v", npr.Shape)
	}
	return mat.NewDense(rows, cols, data), nil
}
