// Copyright (C) The Vcfassoc Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package vcfassoc

import (
	"gopkg.in/check.v1"
)

type featuresSuite struct{}

var _ = check.Suite(&featuresSuite{})

func (s *featuresSuite) TestFeatureString(c *check.C) {
	for _, trial := range []struct {
		call  genotypeCall
		label string
		ok    bool
	}{
		{genotypeCall{Ref: 2}, "0/0", true},
		{genotypeCall{Ref: 1, Alt: 1}, "0/1", true},
		{genotypeCall{Alt: 2}, "1/1", true},
		{genotypeCall{Ref: 1}, "0", true},
		{genotypeCall{}, "", true},
		{genotypeCall{Missing: true}, "", false},
	} {
		label, ok := featureString(trial.call)
		c.Check(label, check.Equals, trial.label, check.Commentf("%+v", trial.call))
		c.Check(ok, check.Equals, trial.ok, check.Commentf("%+v", trial.call))
	}
}

func (s *featuresSuite) TestStringFeaturesOrder(c *check.C) {
	rec := &variantRecord{Chrom: "1", Pos: 9, Calls: []genotypeCall{
		{Alt: 2}, {Missing: true}, {Ref: 2},
	}}
	labels, ok := stringFeatures(rec)
	c.Check(labels, check.DeepEquals, []string{"1/1", "", "0/0"})
	c.Check(ok, check.DeepEquals, []bool{true, false, true})
}

func (s *featuresSuite) TestCountFeaturesPassthrough(c *check.C) {
	calls := []genotypeCall{{Ref: 2}, {Ref: 1, Alt: 1}}
	rec := &variantRecord{Calls: calls}
	c.Check(countFeatures(rec), check.DeepEquals, calls)
}

func (s *featuresSuite) TestAltDosage(c *check.C) {
	rec := &variantRecord{Calls: []genotypeCall{
		{Ref: 2}, {Ref: 1, Alt: 1}, {Alt: 2}, {Missing: true},
	}}
	c.Check(altDosage(rec), check.DeepEquals, []float64{0, 1, 2, 0})
}
