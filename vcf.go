// Copyright (C) The Vcfassoc Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package vcfassoc

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/pgzip"
)

// Fixed leading columns of a VCF data line. Per-sample genotype
// columns start at firstSampleCol.
const (
	chromCol  = 0
	posCol    = 1
	idCol     = 2
	refCol    = 3
	altCol    = 4
	qualCol   = 5
	filterCol = 6
	infoCol   = 7
	formatCol = 8

	firstSampleCol = 9
)

// MalformedRecordError indicates a data line (or genotype field) that
// does not match the declared header.
type MalformedRecordError struct {
	Line   int
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record at line %d: %s", e.Line, e.Reason)
}

// UnknownSampleError indicates a requested sample that does not appear
// in the file header.
type UnknownSampleError struct {
	Sample string
}

func (e *UnknownSampleError) Error() string {
	return fmt.Sprintf("sample %q not present in VCF header", e.Sample)
}

// genotypeCall is one sample's diploid call at one variant. Missing is
// distinct from a called (0,0) pair: "./." sets Missing, whereas a
// call naming neither the ref nor the first alt allele (e.g. "2/2")
// parses to Ref==0, Alt==0 with Missing unset.
type genotypeCall struct {
	Ref     int
	Alt     int
	Missing bool
}

// variantRecord is one VCF data line with its genotype calls reindexed
// to the stream's sample ordering.
type variantRecord struct {
	Chrom string
	Pos   int
	Calls []genotypeCall
}

func (rec *variantRecord) label() string {
	return rec.Chrom + ":" + strconv.Itoa(rec.Pos)
}

// variantSource is the pull side of the pipeline: a finite,
// forward-only sequence of variant records.
type variantSource interface {
	Next() bool
	Variant() *variantRecord
	Err() error
}

// variantStream reads a VCF file line by line, producing one
// variantRecord per data line with calls ordered according to the
// sample list given at construction time (not file column order).
type variantStream struct {
	scanner     *bufio.Scanner
	closers     []io.Closer
	fileSamples []string
	headerLine  string
	colmap      []int // output call index -> file column
	nfields     int
	lineno      int
	cur         *variantRecord
	err         error
	closed      bool
}

// openVariantStream opens filename (decompressing if it ends in .gz)
// and prepares a stream whose calls follow samples. A nil samples
// slice means all samples in file column order.
func openVariantStream(filename string, samples []string) (*variantStream, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	var rdr io.Reader = f
	closers := []io.Closer{f}
	if strings.HasSuffix(filename, ".gz") {
		gz, err := pgzip.NewReader(bufio.NewReaderSize(f, 1<<20))
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("open %s: %w", filename, err)
		}
		rdr = gz
		closers = []io.Closer{gz, f}
	}
	vs, err := newVariantStream(rdr, samples)
	if err != nil {
		for _, c := range closers {
			c.Close()
		}
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	vs.closers = closers
	return vs, nil
}

// newVariantStream consumes meta lines ("##...") and the "#CHROM"
// header from rdr, then leaves the stream positioned at the first data
// line.
func newVariantStream(rdr io.Reader, samples []string) (*variantStream, error) {
	vs := &variantStream{scanner: bufio.NewScanner(rdr)}
	vs.scanner.Buffer(make([]byte, 0, 1<<20), 1<<26)
	for vs.scanner.Scan() {
		vs.lineno++
		line := vs.scanner.Text()
		if strings.HasPrefix(line, "##") {
			continue
		}
		if !strings.HasPrefix(line, "#CHROM") {
			return nil, &MalformedRecordError{Line: vs.lineno, Reason: fmt.Sprintf("expected #CHROM header, got %q", truncate(line, 40))}
		}
		vs.headerLine = line
		break
	}
	if err := vs.scanner.Err(); err != nil {
		return nil, err
	}
	if vs.headerLine == "" {
		return nil, &MalformedRecordError{Line: vs.lineno, Reason: "no #CHROM header line"}
	}
	cols := strings.Split(vs.headerLine, "\t")
	if len(cols) < firstSampleCol {
		return nil, &MalformedRecordError{Line: vs.lineno, Reason: fmt.Sprintf("header has %d columns, need at least %d", len(cols), firstSampleCol)}
	}
	vs.nfields = len(cols)
	vs.fileSamples = cols[firstSampleCol:]
	if samples == nil {
		samples = vs.fileSamples
	}
	fileCol := make(map[string]int, len(vs.fileSamples))
	for i, name := range vs.fileSamples {
		fileCol[name] = firstSampleCol + i
	}
	vs.colmap = make([]int, len(samples))
	for i, name := range samples {
		col, ok := fileCol[name]
		if !ok {
			return nil, &UnknownSampleError{Sample: name}
		}
		vs.colmap[i] = col
	}
	return vs, nil
}

// Next advances to the next data line. It returns false at EOF or on
// the first error, closing the underlying file either way.
func (vs *variantStream) Next() bool {
	if vs.err != nil || vs.closed {
		return false
	}
	for vs.scanner.Scan() {
		vs.lineno++
		line := vs.scanner.Text()
		if line == "" {
			continue
		}
		rec, err := parseVariantLine(line, vs.lineno, vs.nfields, vs.colmap)
		if err != nil {
			vs.err = err
			vs.Close()
			return false
		}
		vs.cur = rec
		return true
	}
	vs.err = vs.scanner.Err()
	vs.Close()
	return false
}

func (vs *variantStream) Variant() *variantRecord { return vs.cur }

func (vs *variantStream) Err() error { return vs.err }

// Close releases the underlying file. Safe to call more than once and
// after early termination.
func (vs *variantStream) Close() error {
	if vs.closed {
		return nil
	}
	vs.closed = true
	var err error
	for _, c := range vs.closers {
		if e := c.Close(); err == nil {
			err = e
		}
	}
	return err
}

// parseVariantLine parses one data line, keeping only the genotype
// columns named by colmap, in colmap order.
func parseVariantLine(line string, lineno, nfields int, colmap []int) (*variantRecord, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != nfields {
		return nil, &MalformedRecordError{Line: lineno, Reason: fmt.Sprintf("%d columns, header declared %d", len(fields), nfields)}
	}
	pos, err := strconv.Atoi(fields[posCol])
	if err != nil {
		return nil, &MalformedRecordError{Line: lineno, Reason: fmt.Sprintf("position %q is not an integer", fields[posCol])}
	}
	rec := &variantRecord{
		Chrom: fields[chromCol],
		Pos:   pos,
		Calls: make([]genotypeCall, len(colmap)),
	}
	for i, col := range colmap {
		call, err := parseGenotype(fields[col])
		if err != nil {
			return nil, &MalformedRecordError{Line: lineno, Reason: fmt.Sprintf("genotype %q: %v", fields[col], err)}
		}
		rec.Calls[i] = call
	}
	return rec, nil
}

// parseGenotype decodes the GT subfield of a genotype column (the text
// before the first ':') into ref/alt allele counts for the biallelic
// case. Any "." allele makes the whole call missing.
func parseGenotype(field string) (genotypeCall, error) {
	if i := strings.IndexByte(field, ':'); i >= 0 {
		field = field[:i]
	}
	if field == "" {
		return genotypeCall{}, fmt.Errorf("empty GT field")
	}
	var call genotypeCall
	for _, tok := range strings.FieldsFunc(field, isGTSep) {
		if tok == "." {
			return genotypeCall{Missing: true}, nil
		}
		idx, err := strconv.Atoi(tok)
		if err != nil || idx < 0 {
			return genotypeCall{}, fmt.Errorf("bad allele index %q", tok)
		}
		switch idx {
		case 0:
			call.Ref++
		case 1:
			call.Alt++
		}
	}
	return call, nil
}

func isGTSep(r rune) bool { return r == '/' || r == '|' }

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
