// Copyright (C) The Vcfassoc Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package vcfassoc

import (
	"gopkg.in/check.v1"
)

type glmSuite struct{}

var _ = check.Suite(&glmSuite{})

// 40 samples, strong but not separable association: 15/20 cases carry
// dosage 2, 5/20 controls do. The likelihood-ratio statistic is about
// 10.5, so p is well under 0.05.
func glmTestCohort() (isCase []bool, dosage []float64) {
	for i := 0; i < 20; i++ {
		isCase = append(isCase, false)
		if i < 5 {
			dosage = append(dosage, 2)
		} else {
			dosage = append(dosage, 0)
		}
	}
	for i := 0; i < 20; i++ {
		isCase = append(isCase, true)
		if i < 15 {
			dosage = append(dosage, 2)
		} else {
			dosage = append(dosage, 0)
		}
	}
	return isCase, dosage
}

func (s *glmSuite) TestLogisticPvalue(c *check.C) {
	isCase, dosage := glmTestCohort()
	pvalue := logisticPvalueFunc(isCase)
	p := pvalue(dosage)
	c.Check(p > 0, check.Equals, true, check.Commentf("p=%v", p))
	c.Check(p < 0.05, check.Equals, true, check.Commentf("p=%v", p))

	// a constant dosage adds no information
	flat := make([]float64, len(isCase))
	p = coercePvalue(pvalue(flat))
	c.Check(p, check.Equals, 1.0, check.Commentf("p=%v", p))
}

func (s *glmSuite) TestLogisticTester(c *check.C) {
	isCase, dosage := glmTestCohort()
	popIdx := make([]int, len(isCase))
	calls := make([]genotypeCall, len(isCase))
	for i, cs := range isCase {
		if cs {
			popIdx[i] = 1
		}
		calls[i] = genotypeCall{Ref: 2 - int(dosage[i]), Alt: int(dosage[i])}
	}
	compute := logisticTester(popIdx)
	results, err := compute(&variantRecord{Chrom: "7", Pos: 77, Calls: calls})
	c.Assert(err, check.IsNil)
	c.Assert(results, check.HasLen, 1)
	c.Check(results[0].Component, check.Equals, "1")
	c.Check(results[0].P < 0.05, check.Equals, true, check.Commentf("p=%v", results[0].P))
}
