// Copyright (C) The tcgastage Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package rnaseq

import (
	"errors"
	"strings"

	"gopkg.in/check.v1"
)

type geneIDSuite struct {
	geneMap *Table
}

var _ = check.Suite(&geneIDSuite{})

func (s *geneIDSuite) SetUpTest(c *check.C) {
	var err error
	s.geneMap, err = ReadTable(strings.NewReader(`ensembl_gene_id,external_gene_name,entrezgene
ENSG001,GENEA,1234
ENSG002,GENEB,
ENSG003,GENEC1,55
ENSG003,GENEC2,56
ENSG004,,77
`), false)
	c.Assert(err, check.IsNil)
}

func (s *geneIDSuite) TestProteinCodingOnly(c *check.C) {
	df, err := ReadTable(strings.NewReader("gene,baseMean,log2FoldChange\nENSG001.3,10,2.5\nENSG002.1,20,-3\n"), true)
	c.Assert(err, check.IsNil)
	out, err := ConvertGeneID(df, s.geneMap, IndexColumn, EnsemblGeneID, ExternalGeneName, true)
	c.Assert(err, check.IsNil)
	c.Check(out.Index, check.DeepEquals, []string{"GENEA"})
	c.Check(out.IndexName, check.Equals, ExternalGeneName)
	c.Check(out.Columns, check.DeepEquals, []string{"baseMean", "log2FoldChange"})
	c.Check(out.Rows, check.DeepEquals, [][]string{{"10", "2.5"}})

	// without the filter, GENEB is kept
	out, err = ConvertGeneID(df, s.geneMap, IndexColumn, EnsemblGeneID, ExternalGeneName, false)
	c.Assert(err, check.IsNil)
	c.Check(out.Index, check.DeepEquals, []string{"GENEA", "GENEB"})

	// input untouched
	c.Check(df.Index, check.DeepEquals, []string{"ENSG001.3", "ENSG002.1"})
}

func (s *geneIDSuite) TestFanOut(c *check.C) {
	df, err := ReadTable(strings.NewReader("gene,v\nENSG003.7,1\nENSG999,2\n"), true)
	c.Assert(err, check.IsNil)
	out, err := ConvertGeneID(df, s.geneMap, IndexColumn, EnsemblGeneID, ExternalGeneName, false)
	c.Assert(err, check.IsNil)
	c.Check(out.Index, check.DeepEquals, []string{"GENEC1", "GENEC2"})
	c.Check(out.Rows, check.DeepEquals, [][]string{{"1"}, {"1"}})
}

func (s *geneIDSuite) TestFanIn(c *check.C) {
	// two versions of the same gene collapse onto one target ID, but
	// both rows are kept
	df, err := ReadTable(strings.NewReader("gene,v\nENSG001.1,1\nENSG001.2,2\n"), true)
	c.Assert(err, check.IsNil)
	out, err := ConvertGeneID(df, s.geneMap, IndexColumn, EnsemblGeneID, ExternalGeneName, false)
	c.Assert(err, check.IsNil)
	c.Check(out.Index, check.DeepEquals, []string{"GENEA", "GENEA"})
	c.Check(out.Rows, check.DeepEquals, [][]string{{"1"}, {"2"}})
}

func (s *geneIDSuite) TestColumnSource(c *check.C) {
	df, err := ReadTable(strings.NewReader("id,sym,v\n0,GENEC2,x\n1,GENEA,y\n2,GENEC2,z\n"), true)
	c.Assert(err, check.IsNil)
	out, err := ConvertGeneID(df, s.geneMap, "sym", ExternalGeneName, EnsemblGeneID, false)
	c.Assert(err, check.IsNil)
	// map order first, then df order
	c.Check(out.Index, check.DeepEquals, []string{"ENSG001", "ENSG003", "ENSG003"})
	c.Check(out.Columns, check.DeepEquals, []string{"v"})
	c.Check(out.Rows, check.DeepEquals, [][]string{{"y"}, {"x"}, {"z"}})
}

func (s *geneIDSuite) TestVersionKeptForOtherNamespaces(c *check.C) {
	geneMap, err := ReadTable(strings.NewReader("refseq,symbol\nNM_1.2,GENEA\n"), false)
	c.Assert(err, check.IsNil)
	df, err := ReadTable(strings.NewReader("gene,v\nNM_1.2,1\nNM_1,2\n"), true)
	c.Assert(err, check.IsNil)
	out, err := ConvertGeneID(df, geneMap, IndexColumn, "refseq", "symbol", false)
	c.Assert(err, check.IsNil)
	c.Check(out.Rows, check.DeepEquals, [][]string{{"1"}})
}

func (s *geneIDSuite) TestNullTargetsNeverMatch(c *check.C) {
	df, err := ReadTable(strings.NewReader("gene,v\nENSG004,1\n"), true)
	c.Assert(err, check.IsNil)
	out, err := ConvertGeneID(df, s.geneMap, IndexColumn, EnsemblGeneID, ExternalGeneName, false)
	c.Assert(err, check.IsNil)
	c.Check(out.Len(), check.Equals, 0)
}

func (s *geneIDSuite) TestValidation(c *check.C) {
	df, err := ReadTable(strings.NewReader("gene,v\nENSG001,1\n"), true)
	c.Assert(err, check.IsNil)
	for _, trial := range []struct {
		colName, from, to string
		proteinCodingOnly bool
		expect            string
	}{
		{"nosuchcol", EnsemblGeneID, ExternalGeneName, false, `column "nosuchcol" not found in table`},
		{IndexColumn, "hgnc_id", ExternalGeneName, false, `column "hgnc_id" not found in gene ID map`},
		{IndexColumn, EnsemblGeneID, "hgnc_symbol", false, `column "hgnc_symbol" not found in gene ID map`},
	} {
		_, err := ConvertGeneID(df, s.geneMap, trial.colName, trial.from, trial.to, trial.proteinCodingOnly)
		c.Check(err, check.ErrorMatches, trial.expect)
		var ve *ValidationError
		c.Check(errors.As(err, &ve), check.Equals, true)
	}

	noEntrez, err := ReadTable(strings.NewReader("ensembl_gene_id,external_gene_name\nENSG001,GENEA\n"), false)
	c.Assert(err, check.IsNil)
	_, err = ConvertGeneID(df, noEntrez, IndexColumn, EnsemblGeneID, ExternalGeneName, true)
	c.Check(err, check.ErrorMatches, `column "entrezgene" not found in gene ID map`)
}

func (s *geneIDSuite) TestExpression(c *check.C) {
	e, err := ReadExpression(strings.NewReader("Ensembl,s1,s2\nENSG001.3,1,2\nENSG002.1,3,4\nENSG003.1,5,6\n"))
	c.Assert(err, check.IsNil)
	out, err := ConvertExpressionIDs(e, s.geneMap, EnsemblGeneID, ExternalGeneName, true)
	c.Assert(err, check.IsNil)
	c.Check(out.Genes, check.DeepEquals, []string{"GENEA", "GENEC1", "GENEC2"})
	c.Check(out.Samples, check.DeepEquals, []string{"s1", "s2"})
	c.Check(out.At(0, 1), check.Equals, 2.0)
	c.Check(out.At(1, 0), check.Equals, 5.0)
	c.Check(out.At(2, 1), check.Equals, 6.0)
	c.Check(e.Genes[0], check.Equals, "ENSG001.3")
}
