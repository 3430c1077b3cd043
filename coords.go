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

	"github.com/kshedden/gonpy"
	"gonum.org/v1/gonum/mat"
)

// ComponentIndexError indicates a requested 1-based principal
// component outside the coordinate matrix.
type ComponentIndexError struct {
	Component int
	Max       int
}

func (e *ComponentIndexError) Error() string {
	return fmt.Sprintf("component %d out of range (coordinate matrix has %d)", e.Component, e.Max)
}

// componentColumn extracts the 1-based component's per-sample values.
func componentColumn(coords *mat.Dense, component int) ([]float64, error) {
	_, cols := coords.Dims()
	if component < 1 || component > cols {
		return nil, &ComponentIndexError{Component: component, Max: cols}
	}
	return mat.Col(nil, component-1, coords), nil
}

// writeCoordsTSV writes a header plus one row per sample. Floats are
// formatted with strconv 'g'/-1 so reading the file back recovers the
// exact float64 values.
func writeCoordsTSV(w io.Writer, samples []string, coords *mat.Dense) error {
	rows, cols := coords.Dims()
	if rows != len(samples) {
		return fmt.Errorf("coordinate matrix has %d rows for %d samples", rows, len(samples))
	}
	bufw := bufio.NewWriter(w)
	fmt.Fprint(bufw, "sample")
	for j := 0; j < cols; j++ {
		fmt.Fprintf(bufw, "\tpc%d", j+1)
	}
	fmt.Fprint(bufw, "\n")
	for i, name := range samples {
		fmt.Fprint(bufw, name)
		for j := 0; j < cols; j++ {
			fmt.Fprint(bufw, "\t", strconv.FormatFloat(coords.At(i, j), 'g', -1, 64))
		}
		fmt.Fprint(bufw, "\n")
	}
	return bufw.Flush()
}

// readCoordsTSV reads the format written by writeCoordsTSV: a header
// line, then one tab-separated row of sample name plus K coordinates.
func readCoordsTSV(r io.Reader) (samples []string, coords *mat.Dense, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1<<16), 1<<24)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("coordinate file is empty")
	}
	ncols := len(strings.Split(scanner.Text(), "\t")) - 1
	if ncols < 1 {
		return nil, nil, fmt.Errorf("coordinate file header has no components")
	}
	var data []float64
	lineno := 1
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != ncols+1 {
			return nil, nil, fmt.Errorf("coordinate file line %d: %d columns, want %d", lineno, len(fields), ncols+1)
		}
		samples = append(samples, fields[0])
		for _, field := range fields[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("coordinate file line %d: %w", lineno, err)
			}
			data = append(data, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	if len(samples) == 0 {
		return nil, nil, fmt.Errorf("coordinate file has no samples")
	}
	return samples, mat.NewDense(len(samples), ncols, data), nil
}

func readCoordsTSVFile(filename string) ([]string, *mat.Dense, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	samples, coords, err := readCoordsTSV(f)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", filename, err)
	}
	return samples, coords, nil
}

// writeCoordsNpy writes the coordinate matrix as a 2-D float64 npy
// file, rows in sample order.
func writeCoordsNpy(filename string, coords *mat.Dense) error {
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0666)
	if err != nil {
		return err
	}
	defer f.Close()
	bufw := bufio.NewWriter(f)
	npw, err := gonpy.NewWriter(nopCloser{bufw})
	if err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	rows, cols := coords.Dims()
	data := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		data = append(data, coords.RawRowView(i)...)
	}
	npw.Shape = []int{rows, cols}
	if err := npw.WriteFloat64(data); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	if err := bufw.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	return f.Close()
}

// readCoordsNpy reads a 2-D float64 npy coordinate matrix. The file
// carries no sample names; rows are assumed to follow the project's
// canonical sample ordering.
func readCoordsNpy(filename string) (*mat.Dense, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	npy, err := gonpy.NewReader(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	data, err := npy.GetFloat64()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	if len(npy.Shape) != 2 {
		return nil, fmt.Errorf("%s: want a 2-D coordinate matrix, got shape %v", filename, npy.Shape)
	}
	rows, cols := npy.Shape[0], npy.Shape[1]
	if npy.ColumnMajor {
		rm := make([]float64, len(data))
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				rm[i*cols+j] = data[j*rows+i]
			}
		}
		data = rm
	}
	return mat.NewDense(rows, cols, data), nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
