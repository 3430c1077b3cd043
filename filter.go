// Copyright (C) The Vcfassoc Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package vcfassoc

import (
	"flag"
)

// defaultMinMAF keeps everything except variants with no observed
// minor allele at all.
const defaultMinMAF = 1e-6

type mafFilter struct {
	MinFrequency float64
}

func (f *mafFilter) Flags(flags *flag.FlagSet) {
	flags.Float64Var(&f.MinFrequency, "min-maf", defaultMinMAF, "drop variants with minor allele frequency below `F`")
}

// minorAlleleFrequency computes min(ref, alt)/total over the
// non-missing calls. Variants with no observed calls score 0.
func minorAlleleFrequency(calls []genotypeCall) float64 {
	var ref, alt float64
	for _, c := range calls {
		if c.Missing {
			continue
		}
		ref += float64(c.Ref)
		alt += float64(c.Alt)
	}
	total := ref + alt
	if total == 0 {
		return 0
	}
	if alt < ref {
		return alt / total
	}
	return ref / total
}

func (f *mafFilter) keep(rec *variantRecord) bool {
	return minorAlleleFrequency(rec.Calls) >= f.MinFrequency
}

// filteredVariantStream drops variants below the MAF threshold,
// preserving input order. Lazy: each Next pulls from the wrapped
// stream until a passing record appears.
type filteredVariantStream struct {
	*variantStream
	filter  *mafFilter
	dropped int
}

func newFilteredVariantStream(vs *variantStream, f *mafFilter) *filteredVariantStream {
	return &filteredVariantStream{variantStream: vs, filter: f}
}

func (fs *filteredVariantStream) Next() bool {
	for fs.variantStream.Next() {
		if fs.filter.keep(fs.variantStream.Variant()) {
			return true
		}
		fs.dropped++
	}
	return false
}
