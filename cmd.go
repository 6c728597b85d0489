// Copyright (C) The tcgastage Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package tcgastage

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	_ "net/http/pprof"
	"os"

	"git.arvados.org/arvados.git/lib/cmd"
	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"
)

var (
	handler = cmd.Multi(map[string]cmd.Handler{
		"version":   cmd.Version,
		"-version":  cmd.Version,
		"--version": cmd.Version,

		"tpm":          &tpmcmd{},
		"stage-labels": &stageLabelsCmd{},
		"convert-ids":  &convertIDsCmd{},
		"select-degs":  &selectDEGsCmd{},
		"features":     &featurescmd{},
		"pca":          &goPCA{},
	})
)

func Main() {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		log.StandardLogger().Formatter = &log.TextFormatter{DisableTimestamp: true}
	}
	os.Exit(handler.RunCommand(os.Args[0], os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

var errUsage = errors.New("invalid command line arguments")

// commonFlags are accepted by every subcommand.
type commonFlags struct {
	pprof    string
	loglevel string
}

func (cf *commonFlags) Flags(flags *flag.FlagSet) {
	flags.StringVar(&cf.pprof, "pprof", "", "serve Go profile data at http://`[addr]:port`")
	flags.StringVar(&cf.loglevel, "loglevel", "info", "logging threshold (trace, debug, info, warn, error, fatal, or panic)")
}

// parseFlags parses args, rejects positional arguments, and applies
// the common flags. It returns flag.ErrHelp if -help was given, and
// errUsage for any other command line error.
func parseFlags(flags *flag.FlagSet, args []string, cf *commonFlags) error {
	err := flags.Parse(args)
	if err == flag.ErrHelp {
		return err
	} else if err != nil {
		return errUsage
	} else if flags.NArg() > 0 {
		fmt.Fprintf(flags.Output(), "unexpected arguments: %q\n", flags.Args())
		return errUsage
	}
	lvl, err := log.ParseLevel(cf.loglevel)
	if err != nil {
		fmt.Fprintf(flags.Output(), "%s\n", err)
		return errUsage
	}
	log.SetLevel(lvl)
	if cf.pprof != "" {
		go func() {
			log.Println(http.ListenAndServe(cf.pprof, nil))
		}()
	}
	return nil
}

// exitCode reports err (if any) on stderr and returns the
// corresponding process exit code.
func exitCode(err error, stderr io.Writer) int {
	switch {
	case err == nil, err == flag.ErrHelp:
		return 0
	case err == errUsage:
		return 2
	default:
		fmt.Fprintf(stderr, "%s\n", err)
		return 1
	}
}
