// Copyright (C) The tcgastage Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package tcgastage

import (
	"fmt"
	"io"
	stdlog "log"
	"math"

	"github.com/kshedden/statmodel/glm"
	"github.com/kshedden/statmodel/statmodel"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

var glmConfig = &glm.Config{
	Family:         glm.NewFamily(glm.BinomialFamily),
	FitMethod:      "IRLS",
	ConcurrentIRLS: 1000,
	Log:            stdlog.New(io.Discard, "", 0),
}

func normalize(a []float64) {
	mean, std := stat.MeanStdDev(a, nil)
	for i, x := range a {
		a[i] = (x - mean) / std
	}
}

// Logistic regression of tumor vs. normal.
//
// The returned function takes the expression of one gene in the
// training samples (same order as samples, but only entries with
// isTraining==true) and returns the likelihood ratio test p-value for
// adding that gene to a model with only the PCA covariates.
func glmPvalueFunc(samples []sampleInfo, nPCA int) (pvalue func(expr []float64) float64) {
	defer func() {
		if err := recover(); err != nil {
			log.Warnf("covariate model: %v", err)
			pvalue = func([]float64) float64 { return math.NaN() }
		}
	}()

	pcaNames := make([]string, 0, nPCA)
	data := make([][]statmodel.Dtype, 0, nPCA)
	for pca := 0; pca < nPCA; pca++ {
		series := make([]statmodel.Dtype, 0, len(samples))
		for _, si := range samples {
			if si.isTraining {
				series = append(series, si.pcaComponents[pca])
			}
		}
		normalize(series)
		data = append(data, series)
		pcaNames = append(pcaNames, fmt.Sprintf("pca%d", pca))
	}

	outcome := make([]statmodel.Dtype, 0, len(samples))
	constants := make([]statmodel.Dtype, 0, len(samples))
	for _, si := range samples {
		if si.isTraining {
			if si.isTumor() {
				outcome = append(outcome, 1)
			} else {
				outcome = append(outcome, 0)
			}
			constants = append(constants, 1)
		}
	}
	data = append([][]statmodel.Dtype{outcome, constants}, data...)
	names := append([]string{"outcome", "constants"}, pcaNames...)
	dataset := statmodel.NewDataset(data, names)

	model, err := glm.NewGLM(dataset, "outcome", names[1:], glmConfig)
	if err != nil {
		log.Warnf("covariate model: %s", err)
		return func([]float64) float64 { return math.NaN() }
	}
	resultCov := model.Fit()
	logCov := resultCov.LogLike()

	return func(expr []float64) (p float64) {
		defer func() {
			if recover() != nil {
				// typically "matrix singular or near-singular with condition number +Inf"
				p = math.NaN()
			}
		}()

		gene := make([]statmodel.Dtype, len(expr))
		copy(gene, expr)
		normalize(gene)
		for _, x := range gene {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				// constant expression, nothing to test
				return math.NaN()
			}
		}

		data := append([][]statmodel.Dtype{data[0], gene}, data[1:]...)
		names := append([]string{"outcome", "gene"}, names[1:]...)
		dataset := statmodel.NewDataset(data, names)

		model, err := glm.NewGLM(dataset, "outcome", names[1:], glmConfig)
		if err != nil {
			return math.NaN()
		}
		resultComp := model.Fit()
		logComp := resultComp.LogLike()
		dist := distuv.ChiSquared{K: 1}
		return dist.Survival(-2 * (logCov - logComp))
	}
}
