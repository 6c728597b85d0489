// Copyright (C) The tcgastage Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package tcgastage

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/csbl/tcgastage/rnaseq"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"
)

type sampleInfo struct {
	id            string
	stage         string
	label         int32
	isTraining    bool
	isValidation  bool
	pcaComponents []float64
}

func (si sampleInfo) isTumor() bool {
	return si.stage != rnaseq.StageNormal
}

// splitTrainingSet randomly assigns n samples to a training set of
// the given size (a proportion of n if size <= 1), and the rest to a
// validation set. The result depends only on n, size, and seed. Both
// returned index lists are sorted.
func splitTrainingSet(n int, size float64, seed int64) (trainingSet, validationSet []int, err error) {
	if size < 0 {
		return nil, nil, fmt.Errorf("invalid training set size %v", size)
	}
	wantlen := int(size)
	if size <= 1 {
		wantlen = int(size * float64(n))
	}
	if wantlen > n {
		return nil, nil, fmt.Errorf("training set size %d exceeds number of samples %d", wantlen, n)
	}
	for i := 0; i < n; i++ {
		trainingSet = append(trainingSet, i)
	}
	randsrc := rand.New(rand.NewSource(uint64(seed)))
	for tslen := len(trainingSet); tslen > wantlen; {
		i := randsrc.Intn(tslen)
		validationSet = append(validationSet, trainingSet[i])
		tslen--
		trainingSet[i] = trainingSet[tslen]
		trainingSet = trainingSet[:tslen]
	}
	sort.Ints(trainingSet)
	sort.Ints(validationSet)
	return trainingSet, validationSet, nil
}

func writeSampleInfo(samples []sampleInfo, outputDir string) error {
	fnm := outputDir + "/samples.csv"
	log.Infof("writing sample metadata to %s", fnm)
	f, err := os.Create(fnm)
	if err != nil {
		return err
	}
	defer f.Close()
	pcaLabels := ""
	if len(samples) > 0 {
		for i := range samples[0].pcaComponents {
			pcaLabels += fmt.Sprintf(",PCA%d", i)
		}
	}
	_, err = fmt.Fprintf(f, "Index,SampleID,Stage,Label,TrainingValidation%s\n", pcaLabels)
	if err != nil {
		return err
	}
	for i, si := range samples {
		var tv string
		if si.isTraining {
			tv = "1"
		} else if si.isValidation {
			tv = "0"
		}
		var pcavals string
		for _, pcaval := range si.pcaComponents {
			pcavals += fmt.Sprintf(",%f", pcaval)
		}
		_, err = fmt.Fprintf(f, "%d,%s,%s,%d,%s%s\n", i, csvQuote(si.id), si.stage, si.label, tv, pcavals)
		if err != nil {
			return fmt.Errorf("write %s: %w", fnm, err)
		}
	}
	err = f.Close()
	if err != nil {
		return fmt.Errorf("close %s: %w", fnm, err)
	}
	return nil
}

func writeClasses(enc *rnaseq.LabelEncoder, outputDir string) error {
	fnm := outputDir + "/classes.csv"
	log.Infof("writing label encoding to %s", fnm)
	f, err := os.Create(fnm)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = fmt.Fprint(f, "Label,Stage\n")
	if err != nil {
		return err
	}
	for code, stage := range enc.Classes {
		_, err = fmt.Fprintf(f, "%d,%s\n", code, stage)
		if err != nil {
			return fmt.Errorf("write %s: %w", fnm, err)
		}
	}
	return f.Close()
}

// csvQuote returns s as a CSV field, quoted if necessary.
func csvQuote(s string) string {
	if !strings.ContainsAny(s, ",\"\r\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
