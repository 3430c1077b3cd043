// Copyright (C) The Vcfassoc Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package vcfassoc

import (
	"strings"

	"gopkg.in/check.v1"
)

type filterSuite struct{}

var _ = check.Suite(&filterSuite{})

func (s *filterSuite) TestMinorAlleleFrequency(c *check.C) {
	for _, trial := range []struct {
		calls []genotypeCall
		want  float64
	}{
		{[]genotypeCall{{Ref: 2}, {Ref: 1, Alt: 1}, {Alt: 2}}, 0.5},
		{[]genotypeCall{{Ref: 2}, {Ref: 2}, {Ref: 1, Alt: 1}}, 1.0 / 6},
		{[]genotypeCall{{Ref: 2}, {Ref: 2}}, 0},
		{[]genotypeCall{{Alt: 2}, {Alt: 2}}, 0},
		{[]genotypeCall{{Missing: true}, {Missing: true}}, 0},
		{[]genotypeCall{{Missing: true}, {Ref: 1, Alt: 1}}, 0.5},
		{nil, 0},
	} {
		c.Check(minorAlleleFrequency(trial.calls), check.Equals, trial.want, check.Commentf("%v", trial.calls))
	}
}

func (s *filterSuite) TestThresholdInclusive(c *check.C) {
	f := &mafFilter{MinFrequency: 0.25}
	c.Check(f.keep(&variantRecord{Calls: []genotypeCall{{Ref: 1, Alt: 1}, {Ref: 2}}}), check.Equals, true)   // maf == 0.25
	c.Check(f.keep(&variantRecord{Calls: []genotypeCall{{Ref: 1, Alt: 1}, {Ref: 2}, {Ref: 2}}}), check.Equals, false)
}

func (s *filterSuite) TestFilteredStream(c *check.C) {
	vcf := `#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO	FORMAT	a	b	c
1	1	.	A	T	.	.	.	GT	0/0	0/1	1/1
1	2	.	A	T	.	.	.	GT	0/0	0/0	0/0
1	3	.	A	T	.	.	.	GT	./.	./.	./.
1	4	.	A	T	.	.	.	GT	0/1	0/0	0/0
`
	vs, err := newVariantStream(strings.NewReader(vcf), nil)
	c.Assert(err, check.IsNil)
	fs := newFilteredVariantStream(vs, &mafFilter{MinFrequency: defaultMinMAF})
	recs := collect(c, fs)
	c.Assert(recs, check.HasLen, 2)
	c.Check(recs[0].Pos, check.Equals, 1)
	c.Check(recs[1].Pos, check.Equals, 4)
	c.Check(fs.dropped, check.Equals, 2)
}

func (s *filterSuite) TestZeroThresholdKeepsMonomorphic(c *check.C) {
	vcf := `#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO	FORMAT	a
1	2	.	A	T	.	.	.	GT	0/0
`
	vs, err := newVariantStream(strings.NewReader(vcf), nil)
	c.Assert(err, check.IsNil)
	fs := newFilteredVariantStream(vs, &mafFilter{MinFrequency: 0})
	c.Check(collect(c, fs), check.HasLen, 1)
}
