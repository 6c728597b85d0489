// Copyright (C) The tcgastage Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package tcgastage

import (
	"encoding/csv"
	"flag"
	"io"

	"github.com/csbl/tcgastage/rnaseq"
	log "github.com/sirupsen/logrus"
)

const defaultProject = "TCGA-COAD"

type stageLabelsCmd struct{}

func (cmd *stageLabelsCmd) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	return exitCode(cmd.run(prog, args, stdin, stdout, stderr), stderr)
}

func (cmd *stageLabelsCmd) run(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	inputFilename := flags.String("i", "-", "sample annotation csv `file`")
	outputFilename := flags.String("o", "-", "output `file`")
	project := flags.String("project", defaultProject, "project `name`")
	var common commonFlags
	common.Flags(flags)
	err := parseFlags(flags, args, &common)
	if err != nil {
		return err
	}

	annot, err := loadTable(*inputFilename, stdin, false)
	if err != nil {
		return err
	}
	labels, err := rnaseq.LabelStages(annot, *project)
	if err != nil {
		return err
	}
	logStageCounts(labels)
	return writeOutput(*outputFilename, stdout, func(w io.Writer) error {
		return writeStageLabels(w, labels)
	})
}

func writeStageLabels(w io.Writer, labels []rnaseq.StageLabel) error {
	cw := csv.NewWriter(w)
	err := cw.Write([]string{rnaseq.BarcodeColumn, "stage"})
	if err != nil {
		return err
	}
	for _, l := range labels {
		err = cw.Write([]string{l.Barcode, l.Stage})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func logStageCounts(labels []rnaseq.StageLabel) {
	count := map[string]int{}
	for _, l := range labels {
		count[l.Stage]++
	}
	fields := log.Fields{}
	for stage, n := range count {
		fields[stage] = n
	}
	log.WithFields(fields).Infof("%d stage labels", len(labels))
}
