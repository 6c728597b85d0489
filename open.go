// Copyright (C) The tcgastage Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package tcgastage

import (
	"bufio"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strings"

	"github.com/csbl/tcgastage/rnaseq"
	"github.com/klauspost/pgzip"
	log "github.com/sirupsen/logrus"
)

// zopen returns a reader for the given file, transparently
// decompressing the input if fnm ends with ".gz". If fnm is "-",
// stdin is returned instead.
func zopen(fnm string, stdin io.Reader) (io.ReadCloser, error) {
	if fnm == "-" {
		return ioutil.NopCloser(stdin), nil
	}
	f, err := os.Open(fnm)
	if err != nil || !strings.HasSuffix(fnm, ".gz") {
		return f, err
	}
	rdr, err := pgzip.NewReader(bufio.NewReaderSize(f, 4*1024*1024))
	if err != nil {
		f.Close()
		return nil, err
	}
	return gzipr{rdr, f}, nil
}

// gzipr wraps a ReadCloser and a Closer, presenting a single Close()
// method that closes both wrapped objects.
type gzipr struct {
	io.ReadCloser
	io.Closer
}

func (gr gzipr) Close() error {
	e1 := gr.ReadCloser.Close()
	e2 := gr.Closer.Close()
	if e1 != nil {
		return e1
	}
	return e2
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// createOutput returns a writer for fnm, or stdout if fnm is "-".
func createOutput(fnm string, stdout io.Writer) (io.WriteCloser, error) {
	if fnm == "-" {
		return nopCloser{stdout}, nil
	}
	return os.OpenFile(fnm, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0666)
}

func loadTable(fnm string, stdin io.Reader, indexed bool) (*rnaseq.Table, error) {
	f, err := zopen(fnm, stdin)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	log.Infof("reading %s", fnm)
	t, err := rnaseq.ReadTable(bufio.NewReaderSize(f, 1<<20), indexed)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fnm, err)
	}
	log.Infof("%s: %d rows, %d columns", fnm, t.Len(), len(t.Columns))
	return t, nil
}

func loadExpression(fnm string, stdin io.Reader) (*rnaseq.Expression, error) {
	f, err := zopen(fnm, stdin)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	log.Infof("reading %s", fnm)
	e, err := rnaseq.ReadExpression(bufio.NewReaderSize(f, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fnm, err)
	}
	genes, samples := e.Dims()
	log.Infof("%s: %d genes, %d samples", fnm, genes, samples)
	return e, nil
}

// writeOutput calls write with a buffered writer for fnm (or stdout,
// if fnm is "-"), then flushes and closes it.
func writeOutput(fnm string, stdout io.Writer, write func(io.Writer) error) error {
	output, err := createOutput(fnm, stdout)
	if err != nil {
		return err
	}
	defer output.Close()
	bufw := bufio.NewWriter(output)
	err = write(bufw)
	if err != nil {
		return fmt.Errorf("write %s: %w", fnm, err)
	}
	err = bufw.Flush()
	if err != nil {
		return fmt.Errorf("write %s: %w", fnm, err)
	}
	err = output.Close()
	if err != nil {
		return fmt.Errorf("close %s: %w", fnm, err)
	}
	return nil
}
