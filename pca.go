// Copyright (C) The tcgastage Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package tcgastage

import (
	"flag"
	"fmt"
	"io"

	"github.com/james-bowman/nlp"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

type goPCA struct{}

func (cmd *goPCA) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	return exitCode(cmd.run(prog, args, stdin, stdout, stderr), stderr)
}

func (cmd *goPCA) run(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	inputFilename := flags.String("i", "-", "input numpy `file` (samples × features)")
	outputFilename := flags.String("o", "-", "output `file`")
	components := flags.Int("components", 4, "number of components")
	var common commonFlags
	common.Flags(flags)
	err := parseFlags(flags, args, &common)
	if err != nil {
		return err
	}

	input, err := zopen(*inputFilename, stdin)
	if err != nil {
		return err
	}
	defer input.Close()
	log.Infof("reading %s", *inputFilename)
	x, err := readNumpyMatrix(input)
	if err != nil {
		return fmt.Errorf("%s: %w", *inputFilename, err)
	}
	err = input.Close()
	if err != nil {
		return err
	}

	pca, err := principalComponents(x, *components)
	if err != nil {
		return err
	}
	rows, cols := pca.Dims()
	return writeNumpyMatrix(*outputFilename, stdout, pca, rows, cols)
}

// principalComponents projects the rows (samples) of x onto its first
// k principal components and returns the resulting samples×k matrix.
// Columns are mean-centered before fitting.
func principalComponents(x *mat.Dense, k int) (*mat.Dense, error) {
	rows, cols := x.Dims()
	if k < 1 || k > rows || k > cols {
		return nil, fmt.Errorf("cannot compute %d principal components of a %d×%d matrix", k, rows, cols)
	}
	centered := mat.NewDense(rows, cols, nil)
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, x)
		mean := stat.Mean(col, nil)
		for i := range col {
			col[i] -= mean
		}
		centered.SetCol(j, col)
	}

	log.Printf("fitting PCA: %d rows, %d cols, %d components", rows, cols, k)
	mtx := centered.T()
	transformer := nlp.NewPCA(k)
	transformer.Fit(mtx)
	log.Printf("transforming")
	mtx, err := transformer.Transform(mtx)
	if err != nil {
		return nil, err
	}
	return mat.DenseCopyOf(mtx.T()), nil
}
