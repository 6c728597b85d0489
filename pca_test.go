// Copyright (C) The tcgastage Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package tcgastage

import (
	"bytes"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"
	"gopkg.in/check.v1"
)

type pcaSuite struct{}

var _ = check.Suite(&pcaSuite{})

func (s *pcaSuite) TestPrincipalComponents(c *check.C) {
	// Samples vary along (1,2,0), plus uncorrelated noise along
	// (0,0,1).
	x := mat.NewDense(6, 3, []float64{
		1, 2, 0.1,
		2, 4, 0.1,
		3, 6, -0.1,
		-1, -2, 0.1,
		-2, -4, 0.1,
		-3, -6, -0.1,
	})
	pca, err := principalComponents(x, 2)
	c.Assert(err, check.IsNil)
	rows, cols := pca.Dims()
	c.Check(rows, check.Equals, 6)
	c.Check(cols, check.Equals, 2)
	// First component scores are proportional to the position along
	// the dominant direction, up to sign.
	pc0 := mat.Col(nil, 0, pca)
	ratio := pc0[1] / pc0[0]
	c.Check(math.Abs(ratio-2) < 1e-6, check.Equals, true, check.Commentf("pc0 %v", pc0))
	c.Check(math.Abs(pc0[3]+pc0[0]) < 1e-6, check.Equals, true, check.Commentf("pc0 %v", pc0))
	// Input is not modified.
	c.Check(x.At(0, 0), check.Equals, 1.0)
}

func (s *pcaSuite) TestTooManyComponents(c *check.C) {
	x := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	_, err := principalComponents(x, 3)
	c.Check(err, check.ErrorMatches, `cannot compute 3 principal components of a 3×2 matrix`)
	_, err = principalComponents(x, 0)
	c.Check(err, check.NotNil)
}

func (s *pcaSuite) TestCommand(c *check.C) {
	tmpdir := c.MkDir()
	x := mat.NewDense(4, 3, []float64{
		1, 0, 2,
		2, 1, 0,
		0, 3, 1,
		4, 1, 1,
	})
	err := writeNumpyMatrix(tmpdir+"/features.npy", nil, x, 4, 3)
	c.Assert(err, check.IsNil)

	code := (&goPCA{}).RunCommand("tcgastage pca", []string{"-i", tmpdir + "/features.npy", "-o", tmpdir + "/pca.npy", "-components", "2"}, bytes.NewReader(nil), os.Stderr, os.Stderr)
	c.Assert(code, check.Equals, 0)
	f, err := os.Open(tmpdir + "/pca.npy")
	c.Assert(err, check.IsNil)
	defer f.Close()
	pca, err := readNumpyMatrix(f)
	c.Assert(err, check.IsNil)
	rows, cols := pca.Dims()
	c.Check(rows, check.Equals, 4)
	c.Check(cols, check.Equals, 2)

	stdout := &bytes.Buffer{}
	code = (&goPCA{}).RunCommand("tcgastage pca", []string{"-components", "2"}, bytes.NewReader(nil), stdout, os.Stderr)
	c.Check(code, check.Equals, 1)
	c.Check(stdout.Len(), check.Equals, 0)
}
