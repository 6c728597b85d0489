// Copyright (C) The tcgastage Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package tcgastage

import (
	"flag"
	"io"
	"math"
	"strconv"

	"github.com/csbl/tcgastage/rnaseq"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	log "github.com/sirupsen/logrus"
)

// Differential expression table columns.
const (
	log2FoldChangeColumn = "log2FoldChange"
	padjColumn           = "padj"
	absLog2FCColumn      = "absLog2FC"
	rowColumn            = "row"
)

type degFilter struct {
	MinLog2FC float64
	MaxPadj   float64
}

func (f *degFilter) Flags(flags *flag.FlagSet) {
	flags.Float64Var(&f.MinLog2FC, "log2fc-min", 2, "keep genes with |log2FoldChange| ≥ `X`")
	flags.Float64Var(&f.MaxPadj, "padj-max", 0.001, "keep genes with adjusted p-value ≤ `P`")
}

// Apply returns the differentially expressed genes in de: rows with
// |log2FoldChange| ≥ MinLog2FC and padj ≤ MaxPadj, sorted by padj
// (ascending) then |log2FoldChange| (descending). Rows with missing
// values are dropped. The result has an additional absLog2FC column.
func (f *degFilter) Apply(de *rnaseq.Table) (*rnaseq.Table, error) {
	for _, col := range []string{log2FoldChangeColumn, padjColumn} {
		if !de.HasColumn(col) {
			return nil, &rnaseq.ValidationError{What: "column", Name: col, In: "differential expression table"}
		}
	}
	columns := append(append([]string(nil), de.Columns...), absLog2FCColumn)
	if de.Len() == 0 {
		return &rnaseq.Table{IndexName: de.IndexName, Columns: columns}, nil
	}
	lfcCol := de.ColumnIndex(log2FoldChangeColumn)
	padjCol := de.ColumnIndex(padjColumn)

	records := make([][]string, 0, de.Len()+1)
	records = append(records, []string{rowColumn, log2FoldChangeColumn, padjColumn})
	for i, row := range de.Rows {
		records = append(records, []string{strconv.Itoa(i), row[lfcCol], row[padjCol]})
	}
	df := dataframe.LoadRecords(records,
		dataframe.DetectTypes(false),
		dataframe.WithTypes(map[string]series.Type{
			rowColumn:            series.Int,
			log2FoldChangeColumn: series.Float,
			padjColumn:           series.Float,
		}))
	if df.Err != nil {
		return nil, df.Err
	}

	lfc := df.Col(log2FoldChangeColumn).Float()
	abslfc := make([]float64, len(lfc))
	for i, v := range lfc {
		abslfc[i] = math.Abs(v)
	}
	df = df.Mutate(series.New(abslfc, series.Float, absLog2FCColumn))
	df = df.Filter(dataframe.F{Colname: absLog2FCColumn, Comparator: series.GreaterEq, Comparando: f.MinLog2FC})
	df = df.Filter(dataframe.F{Colname: padjColumn, Comparator: series.LessEq, Comparando: f.MaxPadj})
	df = df.Arrange(dataframe.Sort(padjColumn), dataframe.RevSort(absLog2FCColumn))
	if df.Err != nil {
		return nil, df.Err
	}
	if df.Nrow() == 0 {
		return &rnaseq.Table{IndexName: de.IndexName, Columns: columns}, nil
	}
	rows, err := df.Col(rowColumn).Int()
	if err != nil {
		return nil, err
	}

	out := &rnaseq.Table{
		IndexName: de.IndexName,
		Columns:   columns,
		Index:     make([]string, len(rows)),
		Rows:      make([][]string, len(rows)),
	}
	for i, row := range rows {
		out.Index[i] = de.Index[row]
		out.Rows[i] = append(append([]string(nil), de.Rows[row]...), strconv.FormatFloat(abslfc[row], 'g', -1, 64))
	}
	return out, nil
}

type selectDEGsCmd struct {
	degFilter
}

func (cmd *selectDEGsCmd) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	return exitCode(cmd.run(prog, args, stdin, stdout, stderr), stderr)
}

func (cmd *selectDEGsCmd) run(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	inputFilename := flags.String("i", "-", "differential expression results csv `file`, indexed by gene ID")
	outputFilename := flags.String("o", "-", "output `file`")
	var ids geneIDArgs
	ids.Flags(flags, "map", false)
	cmd.degFilter.Flags(flags)
	var common commonFlags
	common.Flags(flags)
	err := parseFlags(flags, args, &common)
	if err != nil {
		return err
	}

	de, err := loadTable(*inputFilename, stdin, true)
	if err != nil {
		return err
	}
	if ids.MapFile != "" {
		de, err = ids.convert(de, rnaseq.IndexColumn)
		if err != nil {
			return err
		}
	}
	degs, err := cmd.degFilter.Apply(de)
	if err != nil {
		return err
	}
	log.Infof("%d differentially expressed genes (|log2FoldChange| ≥ %g, padj ≤ %g)", degs.Len(), cmd.MinLog2FC, cmd.MaxPadj)
	return writeOutput(*outputFilename, stdout, degs.WriteCSV)
}
