// Copyright (C) The tcgastage Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package rnaseq

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Stage labels.
const (
	StageNormal = "normal"
	StageI      = "i"
	StageII     = "ii"
	StageIII    = "iii"
	StageIV     = "iv"
)

// Annotation table columns used by LabelStages.
const (
	BarcodeColumn    = "barcode"
	ProjectColumn    = "project"
	SampleTypeColumn = "sample_type"
	TumorStageColumn = "tumor_stage"
)

// stagePatterns are tested, in this order, against the lower-cased
// tumor_stage text of each non-normal sample. A sample is listed
// under every stage whose pattern matches.
var stagePatterns = []struct {
	stage string
	re    *regexp.Regexp
}{
	{StageI, regexp.MustCompile(`^i$|\si[abc]?$|1`)},
	{StageII, regexp.MustCompile(`^ii$|\sii[abc]?$|2`)},
	{StageIII, regexp.MustCompile(`^iii$|\siii[abc]?$|3`)},
	{StageIV, regexp.MustCompile(`^iv$|\siv[abc]?$|4`)},
}

// StageLabel assigns a cancer stage to one sample barcode.
type StageLabel struct {
	Barcode string
	Stage   string
}

// LabelStages returns the stage labels of the given project's samples
// in annot.
//
// Samples whose sample_type contains "normal" are labeled
// StageNormal, and are excluded from stage matching even if their
// tumor_stage text looks like a stage. Other samples are labeled by
// matching their tumor_stage text; a sample whose text matches no
// stage is omitted, and a sample whose text matches several stages
// (e.g., "stage 1/2") is listed once under each of them.
//
// The result lists normal samples first, followed by stages i, ii,
// iii, iv, each group in annotation order.
func LabelStages(annot *Table, project string) ([]StageLabel, error) {
	err := annot.requireColumns("annotation", BarcodeColumn, ProjectColumn, SampleTypeColumn, TumorStageColumn)
	if err != nil {
		return nil, err
	}
	barcodeCol := annot.ColumnIndex(BarcodeColumn)
	projectCol := annot.ColumnIndex(ProjectColumn)
	typeCol := annot.ColumnIndex(SampleTypeColumn)
	stageCol := annot.ColumnIndex(TumorStageColumn)

	var rows [][]string
	for _, row := range annot.Rows {
		if row[projectCol] == project {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return nil, &ValidationError{What: "project", Name: project, In: "annotation"}
	}

	var labels []StageLabel
	normal := map[string]bool{}
	for _, row := range rows {
		sampleType := row[typeCol]
		if !IsNull(sampleType) && strings.Contains(strings.ToLower(sampleType), "normal") {
			normal[row[barcodeCol]] = true
			labels = append(labels, StageLabel{Barcode: row[barcodeCol], Stage: StageNormal})
		}
	}
	for _, sp := range stagePatterns {
		for _, row := range rows {
			if normal[row[barcodeCol]] || IsNull(row[stageCol]) {
				continue
			}
			if sp.re.MatchString(strings.ToLower(row[stageCol])) {
				labels = append(labels, StageLabel{Barcode: row[barcodeCol], Stage: sp.stage})
			}
		}
	}
	return labels, nil
}

// LabelEncoder maps stage names to consecutive integers, in sorted
// name order, and back.
type LabelEncoder struct {
	Classes []string // Classes[i] is the name encoded as i
}

// NewLabelEncoder returns an encoder for the distinct stages in labels.
func NewLabelEncoder(labels []StageLabel) *LabelEncoder {
	seen := map[string]bool{}
	enc := &LabelEncoder{}
	for _, l := range labels {
		if !seen[l.Stage] {
			seen[l.Stage] = true
			enc.Classes = append(enc.Classes, l.Stage)
		}
	}
	sort.Strings(enc.Classes)
	return enc
}

// Encode returns the integer code for each stage name.
func (enc *LabelEncoder) Encode(stages []string) ([]int32, error) {
	codes := make([]int32, len(stages))
	for i, stage := range stages {
		code := sort.SearchStrings(enc.Classes, stage)
		if code == len(enc.Classes) || enc.Classes[code] != stage {
			return nil, fmt.Errorf("label %q not in encoder classes %q", stage, enc.Classes)
		}
		codes[i] = int32(code)
	}
	return codes, nil
}

// Decode returns the stage name for each integer code.
func (enc *LabelEncoder) Decode(codes []int32) ([]string, error) {
	stages := make([]string, len(codes))
	for i, code := range codes {
		if code < 0 || int(code) >= len(enc.Classes) {
			return nil, fmt.Errorf("label code %d out of range [0,%d)", code, len(enc.Classes))
		}
		stages[i] = enc.Classes[code]
	}
	return stages, nil
}
