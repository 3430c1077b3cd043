// Copyright (C) The Vcfassoc Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package vcfassoc

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

var distSrc = rand.NewSource(rand.Uint64())

// degenerate p-value policy: a test that cannot reject anything
// reports 1 rather than an error.
func coercePvalue(p float64) float64 {
	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 || p > 1 {
		return 1
	}
	return p
}

// oneWayANOVA runs an F-test for equal means across groups. Empty
// groups are ignored. Fewer than two populated groups, or no
// variation at all, yields 1. Zero within-group variance with
// between-group variation yields 0 (perfect separation).
func oneWayANOVA(groups [][]float64) float64 {
	k, n := 0, 0
	var total float64
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		k++
		n += len(g)
		for _, x := range g {
			total += x
		}
	}
	if k < 2 {
		return 1
	}
	grand := total / float64(n)
	var ssb, ssw float64
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		m := stat.Mean(g, nil)
		d := m - grand
		ssb += float64(len(g)) * d * d
		for _, x := range g {
			ssw += (x - m) * (x - m)
		}
	}
	if ssw == 0 {
		if ssb > 0 {
			return 0
		}
		return 1
	}
	dfb := float64(k - 1)
	dfw := float64(n - k)
	if dfw <= 0 {
		return 1
	}
	f := (ssb / dfb) / (ssw / dfw)
	p := distuv.F{D1: dfb, D2: dfw, Src: distSrc}.Survival(f)
	return coercePvalue(p)
}

// chiSquaredIndependence runs a chi-squared test of independence on a
// 2xK table given as its ref and alt rows. Tables without contingency
// (one column, or an empty row or column) yield 1.
func chiSquaredIndependence(refRow, altRow []float64) float64 {
	k := len(refRow)
	if k < 2 {
		return 1
	}
	var total, refSum, altSum float64
	colSum := make([]float64, k)
	for j := 0; j < k; j++ {
		refSum += refRow[j]
		altSum += altRow[j]
		colSum[j] = refRow[j] + altRow[j]
		total += colSum[j]
	}
	if total == 0 || refSum == 0 || altSum == 0 {
		return 1
	}
	var sum float64
	for j := 0; j < k; j++ {
		if colSum[j] == 0 {
			return 1
		}
		for _, rc := range []struct{ obs, rowSum float64 }{
			{refRow[j], refSum},
			{altRow[j], altSum},
		} {
			e := rc.rowSum * colSum[j] / total
			d := rc.obs - e
			sum += d * d / e
		}
	}
	p := 1 - distuv.ChiSquared{K: float64(k - 1), Src: distSrc}.CDF(sum)
	return coercePvalue(p)
}
