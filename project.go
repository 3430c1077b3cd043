// Copyright (C) The Vcfassoc Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package vcfassoc

import (
	"bufio"
	"encoding/gob"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/blake2b"
	"gonum.org/v1/gonum/mat"
)

// ProjectSummary is the gob artifact written by "import". SampleNames
// is the canonical sample ordering for every later stage;
// HeaderDigest lets those stages detect that they are reading a
// different VCF than the one imported.
type ProjectSummary struct {
	SampleNames  []string
	Populations  map[string][]string
	HeaderDigest [blake2b.Size256]byte
}

// populationOf inverts the Populations map. Samples listed in no
// population are absent from the result.
func (ps *ProjectSummary) populationOf() map[string]string {
	out := map[string]string{}
	for label, samples := range ps.Populations {
		for _, s := range samples {
			out[s] = label
		}
	}
	return out
}

const projectionsKey = "projections"

// PCAModel is the gob model artifact produced by "pca": named
// row-major float64 matrices, one row per sample in SampleNames
// order. The projection matrix lives under the fixed key
// "projections".
type PCAModel struct {
	SampleNames []string
	Components  int
	Matrices    map[string][]float64
}

// Projections returns the projection matrix as a dense gonum matrix.
func (m *PCAModel) Projections() (*mat.Dense, error) {
	data, ok := m.Matrices[projectionsKey]
	if !ok {
		return nil, fmt.Errorf("model artifact has no %q matrix", projectionsKey)
	}
	rows := len(m.SampleNames)
	if m.Components <= 0 || rows*m.Components != len(data) {
		return nil, fmt.Errorf("model artifact %q matrix has %d values, want %d samples x %d components", projectionsKey, len(data), rows, m.Components)
	}
	return mat.NewDense(rows, m.Components, data), nil
}

func headerDigest(headerLine string) [blake2b.Size256]byte {
	return blake2b.Sum256([]byte(headerLine))
}

func writeGob(filename string, v interface{}) error {
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0666)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if err := gob.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	return f.Close()
}

func readGob(filename string, v interface{}) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := gob.NewDecoder(bufio.NewReader(f)).Decode(v); err != nil {
		return fmt.Errorf("read %s: %w", filename, err)
	}
	return nil
}

func loadProject(filename string) (*ProjectSummary, error) {
	var ps ProjectSummary
	if err := readGob(filename, &ps); err != nil {
		return nil, err
	}
	if len(ps.SampleNames) == 0 {
		return nil, fmt.Errorf("%s: project artifact has no samples", filename)
	}
	return &ps, nil
}

func loadModel(filename string) (*PCAModel, error) {
	var m PCAModel
	if err := readGob(filename, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// readPopulations parses a population/label file: one line per label,
// "label,sample1,sample2,...". Blank lines are skipped.
func readPopulations(filename string) (map[string][]string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	pops := map[string][]string{}
	scanner := bufio.NewScanner(f)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) < 2 {
			return nil, fmt.Errorf("%s line %d: want \"label,sample,...\", got %q", filename, lineno, line)
		}
		label := strings.TrimSpace(fields[0])
		if _, dup := pops[label]; dup {
			return nil, fmt.Errorf("%s line %d: duplicate population %q", filename, lineno, label)
		}
		for _, s := range fields[1:] {
			pops[label] = append(pops[label], strings.TrimSpace(s))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	return pops, nil
}
