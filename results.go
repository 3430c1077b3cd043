// Copyright (C) The Vcfassoc Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package vcfassoc

import (
	"bufio"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

// testResult is one emitted association result. Component is the
// 1-based principal component as a string, or "1" in population mode.
type testResult struct {
	Component string
	Chrom     string
	Pos       int
	P         float64
}

// resultWriter streams results to a tab-separated table, logging
// progress at result counts 1, 2, 4, 8, ... P-values are written in
// %.2E form. Output is append-only; on error a partial file is left
// behind.
type resultWriter struct {
	w    *bufio.Writer
	f    io.Closer
	n    int64
	next int64
}

// newResultWriter wraps w and writes the header line immediately.
func newResultWriter(w io.Writer) (*resultWriter, error) {
	rw := &resultWriter{w: bufio.NewWriter(w), next: 1}
	if _, err := fmt.Fprint(rw.w, "component\tchrom\tpos\tpvalue\n"); err != nil {
		return nil, err
	}
	return rw, nil
}

// createResultWriter creates or truncates filename.
func createResultWriter(filename string) (*resultWriter, error) {
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0666)
	if err != nil {
		return nil, err
	}
	rw, err := newResultWriter(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("write %s: %w", filename, err)
	}
	rw.f = f
	return rw, nil
}

func (rw *resultWriter) Write(r testResult) error {
	if _, err := fmt.Fprintf(rw.w, "%s\t%s\t%d\t%.2E\n", r.Component, r.Chrom, r.Pos, r.P); err != nil {
		return err
	}
	rw.n++
	if rw.n == rw.next {
		log.Infof("%d results written", rw.n)
		rw.next *= 2
	}
	return nil
}

func (rw *resultWriter) Close() error {
	err := rw.w.Flush()
	if rw.f != nil {
		if cerr := rw.f.Close(); err == nil {
			err = cerr
		}
		rw.f = nil
	}
	return err
}
