// Copyright (C) The Vcfassoc Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package vcfassoc

import (
	"fmt"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// mapVariants pulls variants from src, computes each one's results
// with bounded parallelism, and hands them to emit in input order.
// Per-variant tests are independent, so batches may run concurrently;
// emission order is restored batch by batch.
func mapVariants(src variantSource, workers int, compute func(*variantRecord) ([]testResult, error), emit func(testResult) error) error {
	if workers < 1 {
		workers = 1
	}
	if workers == 1 {
		for src.Next() {
			results, err := compute(src.Variant())
			if err != nil {
				return err
			}
			for _, r := range results {
				if err := emit(r); err != nil {
					return err
				}
			}
		}
		return src.Err()
	}

	batchSize := workers * 8
	th := newThrottle(workers)
	for {
		batch := make([]*variantRecord, 0, batchSize)
		for len(batch) < batchSize && src.Next() {
			batch = append(batch, src.Variant())
		}
		if len(batch) == 0 {
			break
		}
		out := make([][]testResult, len(batch))
		for i, rec := range batch {
			i, rec := i, rec
			th.Acquire()
			go func() {
				defer th.Release()
				results, err := compute(rec)
				out[i] = results
				th.Report(err)
			}()
		}
		if err := th.Wait(); err != nil {
			return err
		}
		for _, results := range out {
			for _, r := range results {
				if err := emit(r); err != nil {
					return err
				}
			}
		}
	}
	return src.Err()
}

// pcaTester builds the PCA-mode engine: for each requested component,
// group that component's coordinates by categorical genotype and run
// one-way ANOVA. Component indices are 1-based and validated up
// front. Missing genotypes are excluded from grouping; fewer than two
// groups is degenerate (p=1).
func pcaTester(coords *mat.Dense, components []int) (func(*variantRecord) ([]testResult, error), error) {
	rows, _ := coords.Dims()
	colData := make([][]float64, len(components))
	for i, comp := range components {
		col, err := componentColumn(coords, comp)
		if err != nil {
			return nil, err
		}
		colData[i] = col
	}
	return func(rec *variantRecord) ([]testResult, error) {
		if len(rec.Calls) != rows {
			return nil, fmt.Errorf("variant %s has %d calls for %d coordinate rows", rec.label(), len(rec.Calls), rows)
		}
		labels, ok := stringFeatures(rec)
		results := make([]testResult, 0, len(components))
		for ci, comp := range components {
			byLabel := map[string][]float64{}
			for s, label := range labels {
				if ok[s] {
					byLabel[label] = append(byLabel[label], colData[ci][s])
				}
			}
			groups := make([][]float64, 0, len(byLabel))
			for _, g := range byLabel {
				groups = append(groups, g)
			}
			// The F statistic is invariant under group order, so
			// map iteration order does not affect the p-value.
			results = append(results, testResult{
				Component: strconv.Itoa(comp),
				Chrom:     rec.Chrom,
				Pos:       rec.Pos,
				P:         oneWayANOVA(groups),
			})
		}
		return results, nil
	}, nil
}

// contingencyTable accumulates the 2xK population-mode table for one
// variant. Per present sample: ref cell += 2*ref, alt cell += 2*alt,
// except a present (0,0) call adds 4 to both cells of its population
// (a fixed fallback for uninformative calls, not a derived
// probability). Missing calls are skipped. Populations with no
// contributing samples are dropped so they cannot zero out a column.
func contingencyTable(calls []genotypeCall, popIdx []int, npops int) (refRow, altRow []float64) {
	ref := make([]float64, npops)
	alt := make([]float64, npops)
	seen := make([]bool, npops)
	for i, c := range calls {
		pi := popIdx[i]
		if pi < 0 || c.Missing {
			continue
		}
		seen[pi] = true
		if c.Ref == 0 && c.Alt == 0 {
			ref[pi] += 4
			alt[pi] += 4
		} else {
			ref[pi] += 2 * float64(c.Ref)
			alt[pi] += 2 * float64(c.Alt)
		}
	}
	for pi := 0; pi < npops; pi++ {
		if seen[pi] {
			refRow = append(refRow, ref[pi])
			altRow = append(altRow, alt[pi])
		}
	}
	return refRow, altRow
}

// populationIndex maps each sample in ordering to a population index,
// -1 for samples with no label. Population order is the sorted label
// order, so output is deterministic.
func populationIndex(ps *ProjectSummary, ordering []string) (popIdx []int, popNames []string) {
	popNames = make([]string, 0, len(ps.Populations))
	for label := range ps.Populations {
		popNames = append(popNames, label)
	}
	sort.Strings(popNames)
	idxOf := make(map[string]int, len(popNames))
	for i, label := range popNames {
		idxOf[label] = i
	}
	popOf := ps.populationOf()
	popIdx = make([]int, len(ordering))
	for i, sample := range ordering {
		if label, ok := popOf[sample]; ok {
			popIdx[i] = idxOf[label]
		} else {
			popIdx[i] = -1
		}
	}
	return popIdx, popNames
}

// populationTester builds the population-mode engine: one chi-squared
// independence test per variant. The component column of each result
// is the literal "1".
func populationTester(popIdx []int, npops int) func(*variantRecord) ([]testResult, error) {
	return func(rec *variantRecord) ([]testResult, error) {
		if len(rec.Calls) != len(popIdx) {
			return nil, fmt.Errorf("variant %s has %d calls for %d samples", rec.label(), len(rec.Calls), len(popIdx))
		}
		refRow, altRow := contingencyTable(countFeatures(rec), popIdx, npops)
		return []testResult{{
			Component: "1",
			Chrom:     rec.Chrom,
			Pos:       rec.Pos,
			P:         chiSquaredIndependence(refRow, altRow),
		}}, nil
	}
}

// logisticTester builds the logistic likelihood-ratio engine for a
// two-population cohort: outcome is membership in the second (sorted)
// population, covariate is alt-allele dosage.
func logisticTester(popIdx []int) func(*variantRecord) ([]testResult, error) {
	isCase := make([]bool, len(popIdx))
	for i, pi := range popIdx {
		isCase[i] = pi == 1
	}
	pvalue := logisticPvalueFunc(isCase)
	return func(rec *variantRecord) ([]testResult, error) {
		if len(rec.Calls) != len(popIdx) {
			return nil, fmt.Errorf("variant %s has %d calls for %d samples", rec.label(), len(rec.Calls), len(popIdx))
		}
		return []testResult{{
			Component: "1",
			Chrom:     rec.Chrom,
			Pos:       rec.Pos,
			P:         coercePvalue(pvalue(altDosage(rec))),
		}}, nil
	}
}
