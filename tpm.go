// Copyright (C) The tcgastage Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package tcgastage

import (
	"flag"
	"io"

	"github.com/csbl/tcgastage/rnaseq"
	log "github.com/sirupsen/logrus"
)

type tpmcmd struct{}

func (cmd *tpmcmd) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	return exitCode(cmd.run(prog, args, stdin, stdout, stderr), stderr)
}

func (cmd *tpmcmd) run(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	inputFilename := flags.String("i", "-", "FPKM expression csv `file`")
	outputFilename := flags.String("o", "-", "output `file`")
	allowNonfinite := flags.Bool("allow-nonfinite", false, "write NaN/Inf for samples whose FPKM values sum to zero, instead of failing")
	var common commonFlags
	common.Flags(flags)
	err := parseFlags(flags, args, &common)
	if err != nil {
		return err
	}

	fpkm, err := loadExpression(*inputFilename, stdin)
	if err != nil {
		return err
	}
	tpm, err := rnaseq.FPKMToTPM(fpkm, !*allowNonfinite)
	if err != nil {
		return err
	}
	log.Info("converted FPKM to TPM")
	return writeOutput(*outputFilename, stdout, tpm.WriteCSV)
}
