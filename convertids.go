// Copyright (C) The tcgastage Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package tcgastage

import (
	"errors"
	"flag"
	"io"

	"github.com/csbl/tcgastage/rnaseq"
	log "github.com/sirupsen/logrus"
)

// geneIDArgs holds the gene ID translation options shared by the
// subcommands that translate IDs.
type geneIDArgs struct {
	MapFile           string
	From              string
	To                string
	ProteinCodingOnly bool

	gmap *rnaseq.Table
}

func (ids *geneIDArgs) Flags(flags *flag.FlagSet, mapFlag string, proteinCodingOnly bool) {
	flags.StringVar(&ids.MapFile, mapFlag, "", "gene ID map csv `file`")
	flags.StringVar(&ids.From, "from", rnaseq.EnsemblGeneID, "source gene ID namespace (map column `name`)")
	flags.StringVar(&ids.To, "to", rnaseq.ExternalGeneName, "target gene ID namespace (map column `name`)")
	flags.BoolVar(&ids.ProteinCodingOnly, "protein-coding-only", proteinCodingOnly, "drop genes with no "+rnaseq.EntrezGene+" ID")
}

func (ids *geneIDArgs) loadMap() (*rnaseq.Table, error) {
	if ids.gmap != nil {
		return ids.gmap, nil
	}
	if ids.MapFile == "" {
		return nil, errors.New("no gene ID map specified")
	}
	gmap, err := loadTable(ids.MapFile, nil, false)
	if err != nil {
		return nil, err
	}
	ids.gmap = gmap
	return gmap, nil
}

func (ids *geneIDArgs) convert(t *rnaseq.Table, column string) (*rnaseq.Table, error) {
	gmap, err := ids.loadMap()
	if err != nil {
		return nil, err
	}
	out, err := rnaseq.ConvertGeneID(t, gmap, column, ids.From, ids.To, ids.ProteinCodingOnly)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"from":    ids.From,
		"to":      ids.To,
		"rowsIn":  t.Len(),
		"rowsOut": out.Len(),
	}).Info("translated gene IDs")
	return out, nil
}

func (ids *geneIDArgs) convertExpression(e *rnaseq.Expression) (*rnaseq.Expression, error) {
	gmap, err := ids.loadMap()
	if err != nil {
		return nil, err
	}
	out, err := rnaseq.ConvertExpressionIDs(e, gmap, ids.From, ids.To, ids.ProteinCodingOnly)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"from":     ids.From,
		"to":       ids.To,
		"genesIn":  len(e.Genes),
		"genesOut": len(out.Genes),
	}).Info("translated expression gene IDs")
	return out, nil
}

type convertIDsCmd struct{}

func (cmd *convertIDsCmd) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	return exitCode(cmd.run(prog, args, stdin, stdout, stderr), stderr)
}

func (cmd *convertIDsCmd) run(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	inputFilename := flags.String("i", "-", "input csv `file`")
	outputFilename := flags.String("o", "-", "output `file`")
	column := flags.String("column", rnaseq.IndexColumn, "`column` holding the gene IDs to translate (\""+rnaseq.IndexColumn+"\" means the first column)")
	var ids geneIDArgs
	ids.Flags(flags, "map", false)
	var common commonFlags
	common.Flags(flags)
	err := parseFlags(flags, args, &common)
	if err != nil {
		return err
	}
	if ids.MapFile == "" {
		log.Error("-map is required")
		return errUsage
	}

	t, err := loadTable(*inputFilename, stdin, true)
	if err != nil {
		return err
	}
	out, err := ids.convert(t, *column)
	if err != nil {
		return err
	}
	return writeOutput(*outputFilename, stdout, out.WriteCSV)
}
