// Copyright (C) The Vcfassoc Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package vcfassoc

import (
	"fmt"
	"math"

	"gopkg.in/check.v1"
)

type statsSuite struct{}

var _ = check.Suite(&statsSuite{})

func (s *statsSuite) TestOneWayANOVA(c *check.C) {
	// F = 13 on (2, 6) degrees of freedom; p = (1 + 2*13/6)^-3 = 27/4096
	p := oneWayANOVA([][]float64{
		{1, 2, 3},
		{2, 3, 4},
		{5, 6, 7},
	})
	c.Check(fmt.Sprintf("%.7f", p), check.Equals, "0.0065918")
}

func (s *statsSuite) TestANOVADegenerate(c *check.C) {
	// single group
	c.Check(oneWayANOVA([][]float64{{1, 2, 3}}), check.Equals, 1.0)
	// one populated group, one empty
	c.Check(oneWayANOVA([][]float64{{1, 2, 3}, nil}), check.Equals, 1.0)
	// no variation anywhere
	c.Check(oneWayANOVA([][]float64{{2, 2}, {2, 2}}), check.Equals, 1.0)
	// no groups at all
	c.Check(oneWayANOVA(nil), check.Equals, 1.0)
}

func (s *statsSuite) TestANOVAPerfectSeparation(c *check.C) {
	// three singleton groups with distinct values: zero within-group
	// variance, nonzero between-group variance
	c.Check(oneWayANOVA([][]float64{{0.1}, {0.5}, {0.9}}), check.Equals, 0.0)
	// two groups, each internally constant but different
	c.Check(oneWayANOVA([][]float64{{1, 1}, {2, 2}}), check.Equals, 0.0)
}

func (s *statsSuite) TestANOVAIndependentOfGroupOrder(c *check.C) {
	a := oneWayANOVA([][]float64{{1, 2}, {4, 6}, {9, 9, 9}})
	b := oneWayANOVA([][]float64{{9, 9, 9}, {1, 2}, {4, 6}})
	c.Check(fmt.Sprintf("%.12g", a), check.Equals, fmt.Sprintf("%.12g", b))
	c.Check(a > 0 && a < 1, check.Equals, true)
}

func (s *statsSuite) TestChiSquaredIndependence(c *check.C) {
	// X² = 8 on 1 degree of freedom
	p := chiSquaredIndependence([]float64{4, 0}, []float64{0, 4})
	c.Check(fmt.Sprintf("%.7f", p), check.Equals, "0.0046777")
}

func (s *statsSuite) TestChiSquaredDegenerate(c *check.C) {
	// no alt alleles anywhere: no contingency
	c.Check(chiSquaredIndependence([]float64{4, 4}, []float64{0, 0}), check.Equals, 1.0)
	// single population
	c.Check(chiSquaredIndependence([]float64{4}, []float64{4}), check.Equals, 1.0)
	// empty table
	c.Check(chiSquaredIndependence(nil, nil), check.Equals, 1.0)
	// zero column
	c.Check(chiSquaredIndependence([]float64{4, 0}, []float64{4, 0}), check.Equals, 1.0)
	// independent rows
	c.Check(chiSquaredIndependence([]float64{4, 4}, []float64{4, 4}), check.Equals, 1.0)
}

func (s *statsSuite) TestChiSquaredSymmetry(c *check.C) {
	a := chiSquaredIndependence([]float64{6, 0}, []float64{2, 4})
	b := chiSquaredIndependence([]float64{0, 6}, []float64{4, 2})
	c.Check(fmt.Sprintf("%.12f", a), check.Equals, fmt.Sprintf("%.12f", b))
	c.Check(a < 0.05, check.Equals, true)
}

func (s *statsSuite) TestCoercePvalue(c *check.C) {
	c.Check(coercePvalue(math.NaN()), check.Equals, 1.0)
	c.Check(coercePvalue(math.Inf(1)), check.Equals, 1.0)
	c.Check(coercePvalue(math.Inf(-1)), check.Equals, 1.0)
	c.Check(coercePvalue(-0.25), check.Equals, 1.0)
	c.Check(coercePvalue(0.05), check.Equals, 0.05)
	c.Check(coercePvalue(0.0), check.Equals, 0.0)
}
