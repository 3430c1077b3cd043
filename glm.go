// Copyright (C) The Vcfassoc Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package vcfassoc

import (
	"io"
	"log"
	"math"

	"github.com/kshedden/statmodel/glm"
	"github.com/kshedden/statmodel/statmodel"
	"gonum.org/v1/gonum/stat/distuv"
)

var glmConfig = &glm.Config{
	Family:         glm.NewFamily(glm.BinomialFamily),
	FitMethod:      "IRLS",
	ConcurrentIRLS: 1000,
	Log:            log.New(io.Discard, "", 0),
}

// logisticPvalueFunc fits the null model (outcome ~ constant) once for
// a fixed binary outcome, and returns a function computing a
// likelihood-ratio p-value for one variant's alt-allele dosage vector.
// The outcome slice marks which samples belong to the second (case)
// population. Unfittable models report NaN; callers coerce.
func logisticPvalueFunc(isCase []bool) func(dosage []float64) float64 {
	outcome := make([]statmodel.Dtype, len(isCase))
	constants := make([]statmodel.Dtype, len(isCase))
	for i, c := range isCase {
		if c {
			outcome[i] = 1
		}
		constants[i] = 1
	}
	data := [][]statmodel.Dtype{outcome, constants}
	names := []string{"outcome", "constants"}
	dataset := statmodel.NewDataset(data, names)

	model, err := glm.NewGLM(dataset, "outcome", names[1:], glmConfig)
	if err != nil {
		log.Printf("%s", err)
		return func([]float64) float64 { return math.NaN() }
	}
	resultNull := model.Fit()
	logNull := resultNull.LogLike()

	return func(dosage []float64) (p float64) {
		defer func() {
			if recover() != nil {
				// typically "matrix singular or near-singular with condition number +Inf"
				p = math.NaN()
			}
		}()

		variant := make([]statmodel.Dtype, len(dosage))
		for i, d := range dosage {
			variant[i] = statmodel.Dtype(d)
		}
		data := [][]statmodel.Dtype{outcome, variant, constants}
		names := []string{"outcome", "variant", "constants"}
		dataset := statmodel.NewDataset(data, names)

		model, err := glm.NewGLM(dataset, "outcome", names[1:], glmConfig)
		if err != nil {
			return math.NaN()
		}
		resultComp := model.Fit()
		logComp := resultComp.LogLike()
		dist := distuv.ChiSquared{K: 1}
		return dist.Survival(-2 * (logNull - logComp))
	}
}
