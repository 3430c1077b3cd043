// Copyright (C) The Vcfassoc Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package vcfassoc

import (
	"strings"
)

// featureString recodes a call as a canonical categorical genotype
// label: "0/0", "0/1", "1/1", and so on for higher ploidy. ok is
// false for missing calls, which have no category. A call naming
// neither allele 0 nor allele 1 yields the empty label, a category of
// its own.
func featureString(c genotypeCall) (label string, ok bool) {
	if c.Missing {
		return "", false
	}
	var b strings.Builder
	for i := 0; i < c.Ref+c.Alt; i++ {
		if i > 0 {
			b.WriteByte('/')
		}
		if i < c.Ref {
			b.WriteByte('0')
		} else {
			b.WriteByte('1')
		}
	}
	return b.String(), true
}

// stringFeatures recodes all of a variant's calls, preserving the
// stream's sample order. ok[i] is false where the call is missing.
func stringFeatures(rec *variantRecord) (labels []string, ok []bool) {
	labels = make([]string, len(rec.Calls))
	ok = make([]bool, len(rec.Calls))
	for i, c := range rec.Calls {
		labels[i], ok[i] = featureString(c)
	}
	return labels, ok
}

// countFeatures passes the per-sample (ref, alt) allele counts
// through unchanged.
func countFeatures(rec *variantRecord) []genotypeCall {
	return rec.Calls
}

// altDosage recodes calls as alt-allele counts for numeric consumers
// (PCA input, regression covariates). Missing calls contribute zero
// dosage.
func altDosage(rec *variantRecord) []float64 {
	out := make([]float64, len(rec.Calls))
	for i, c := range rec.Calls {
		if !c.Missing {
			out[i] = float64(c.Alt)
		}
	}
	return out
}
