// Copyright (C) The tcgastage Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package tcgastage

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"runtime"

	"github.com/csbl/tcgastage/rnaseq"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

// FeatureSet is a labeled sample-by-gene expression matrix.
type FeatureSet struct {
	Samples []string // barcodes, one per row of X
	Stages  []string
	Labels  []int32 // Encoder's code for each of Stages
	Genes   []string
	X       *mat.Dense // samples × genes
	Encoder *rnaseq.LabelEncoder
}

// assembleFeatures builds a FeatureSet with one row for each label
// whose barcode is a sample in expr, and one column for each gene in
// expr that is also in genes.
//
// Labels whose barcode is not in expr are dropped. A barcode with
// several labels yields several rows. Genes appear in expr's row
// order.
func assembleFeatures(expr *rnaseq.Expression, labels []rnaseq.StageLabel, genes map[string]bool) (*FeatureSet, error) {
	have := make(map[string]bool, len(expr.Samples))
	for _, s := range expr.Samples {
		have[s] = true
	}
	var kept []rnaseq.StageLabel
	var missing int
	for _, l := range labels {
		if have[l.Barcode] {
			kept = append(kept, l)
		} else {
			log.Debugf("labeled sample %s not in expression data", l.Barcode)
			missing++
		}
	}
	if missing > 0 {
		log.Infof("dropped %d of %d labeled samples that are not in expression data", missing, len(labels))
	}
	if len(kept) == 0 {
		return nil, errors.New("no labeled samples found in expression data")
	}

	fs := &FeatureSet{
		Samples: make([]string, len(kept)),
		Stages:  make([]string, len(kept)),
		Encoder: rnaseq.NewLabelEncoder(kept),
	}
	for i, l := range kept {
		fs.Samples[i] = l.Barcode
		fs.Stages[i] = l.Stage
	}
	var err error
	fs.Labels, err = fs.Encoder.Encode(fs.Stages)
	if err != nil {
		return nil, err
	}

	sel, _ := expr.SelectSamples(fs.Samples)
	sel = sel.SelectGenes(func(gene string) bool { return genes[gene] })
	if len(sel.Genes) == 0 {
		return nil, errors.New("none of the selected genes are in expression data")
	}
	fs.Genes = sel.Genes
	fs.X = mat.DenseCopyOf(sel.Values.T())
	return fs, nil
}

type featurescmd struct {
	degFilter
	geneIDs geneIDArgs
}

func (cmd *featurescmd) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	return exitCode(cmd.run(prog, args, stdin, stdout, stderr), stderr)
}

func (cmd *featurescmd) run(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	annotationFilename := flags.String("annotation", "", "sample annotation csv `file`")
	expressionFilename := flags.String("expression", "", "FPKM expression csv `file`, first column Ensembl gene ID")
	deFilename := flags.String("de", "", "differential expression results csv `file`, indexed by Ensembl gene ID")
	project := flags.String("project", defaultProject, "project `name`")
	genesFilename := flags.String("genes", "", "curated gene list `file`, one gene per line (default: built-in proton transporter set)")
	trainingSetSize := flags.Float64("training-set-size", 0.8, "number (or proportion, if <=1) of samples to assign to the training set")
	randomSeed := flags.Int64("random-seed", 0, "PRNG `seed` for the training/validation split")
	allowNonfinite := flags.Bool("allow-nonfinite", false, "write NaN/Inf for samples whose FPKM values sum to zero, instead of failing")
	pcaComponents := flags.Int("pca-components", 0, "number of principal components to compute (0 = none)")
	stagePvalues := flags.Bool("stage-pvalues", false, "compute tumor vs. normal association p-value for each gene")
	threads := flags.Int("threads", runtime.NumCPU(), "maximum number of p-value computations to run in parallel")
	outputDir := flags.String("output-dir", ".", "output `directory`")
	cmd.geneIDs.Flags(flags, "gene-map", true)
	cmd.degFilter.Flags(flags)
	var common commonFlags
	common.Flags(flags)
	err := parseFlags(flags, args, &common)
	if err != nil {
		return err
	}
	for name, val := range map[string]string{
		"annotation": *annotationFilename,
		"expression": *expressionFilename,
		"de":         *deFilename,
		"gene-map":   cmd.geneIDs.MapFile,
	} {
		if val == "" {
			log.Errorf("-%s is required", name)
			return errUsage
		}
	}
	if *pcaComponents < 0 {
		log.Errorf("invalid -pca-components %d", *pcaComponents)
		return errUsage
	}
	err = os.MkdirAll(*outputDir, 0777)
	if err != nil {
		return err
	}

	fpkm, err := loadExpression(*expressionFilename, stdin)
	if err != nil {
		return err
	}
	tpm, err := rnaseq.FPKMToTPM(fpkm, !*allowNonfinite)
	if err != nil {
		return err
	}
	tpm, err = cmd.geneIDs.convertExpression(tpm)
	if err != nil {
		return err
	}

	annot, err := loadTable(*annotationFilename, stdin, false)
	if err != nil {
		return err
	}
	labels, err := rnaseq.LabelStages(annot, *project)
	if err != nil {
		return err
	}
	logStageCounts(labels)

	de, err := loadTable(*deFilename, stdin, true)
	if err != nil {
		return err
	}
	de, err = cmd.geneIDs.convert(de, rnaseq.IndexColumn)
	if err != nil {
		return err
	}
	degs, err := cmd.degFilter.Apply(de)
	if err != nil {
		return err
	}

	curated := protonTransporters
	if *genesFilename != "" {
		f, err := zopen(*genesFilename, stdin)
		if err != nil {
			return err
		}
		defer f.Close()
		curated, err = readGeneList(f)
		if err != nil {
			return fmt.Errorf("%s: %w", *genesFilename, err)
		}
	}
	genes := map[string]bool{}
	for _, g := range degs.Index {
		genes[g] = true
	}
	curatedDEGs := map[string]bool{}
	for _, g := range curated {
		if genes[g] {
			curatedDEGs[g] = true
		}
	}
	for _, g := range curated {
		genes[g] = true
	}
	log.WithFields(log.Fields{
		"DEGs":        degs.Len(),
		"curated":     len(curated),
		"curatedDEGs": len(curatedDEGs),
	}).Info("selected feature genes")

	fs, err := assembleFeatures(tpm, labels, genes)
	if err != nil {
		return err
	}
	nsamples, ngenes := fs.X.Dims()
	log.Infof("feature matrix: %d samples, %d genes, %d classes", nsamples, ngenes, len(fs.Encoder.Classes))

	training, validation, err := splitTrainingSet(nsamples, *trainingSetSize, *randomSeed)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"training":   fmt.Sprintf("%d×%d", len(training), ngenes),
		"validation": fmt.Sprintf("%d×%d", len(validation), ngenes),
	}).Info("split samples")
	samples := make([]sampleInfo, nsamples)
	for i := range samples {
		samples[i] = sampleInfo{id: fs.Samples[i], stage: fs.Stages[i], label: fs.Labels[i], isValidation: true}
	}
	for _, i := range training {
		samples[i].isTraining = true
		samples[i].isValidation = false
	}

	if *pcaComponents > 0 {
		pca, err := principalComponents(fs.X, *pcaComponents)
		if err != nil {
			return err
		}
		for i := range samples {
			samples[i].pcaComponents = append([]float64(nil), pca.RawRowView(i)...)
		}
		err = writeNumpyMatrix(*outputDir+"/pca.npy", nil, pca, nsamples, *pcaComponents)
		if err != nil {
			return err
		}
	}

	var pvalues []float64
	if *stagePvalues {
		pvalues, err = stagePvalueColumns(fs.X, samples, *pcaComponents, *threads)
		if err != nil {
			return err
		}
	}

	err = writeNumpyMatrix(*outputDir+"/features.npy", nil, fs.X, nsamples, ngenes)
	if err != nil {
		return err
	}
	err = writeNumpyInt32(*outputDir+"/labels.npy", nil, fs.Labels)
	if err != nil {
		return err
	}
	err = writeFeatureColumns(fs.Genes, pvalues, *outputDir)
	if err != nil {
		return err
	}
	err = writeSampleInfo(samples, *outputDir)
	if err != nil {
		return err
	}
	return writeClasses(fs.Encoder, *outputDir)
}

// stagePvalueColumns returns the tumor vs. normal association p-value
// of each column of x, computed over the training samples.
func stagePvalueColumns(x *mat.Dense, samples []sampleInfo, nPCA, threads int) ([]float64, error) {
	_, ngenes := x.Dims()
	pvalues := make([]float64, ngenes)
	var training []int
	var tumor, normal int
	for i, si := range samples {
		if !si.isTraining {
			continue
		}
		training = append(training, i)
		if si.isTumor() {
			tumor++
		} else {
			normal++
		}
	}
	if tumor == 0 || normal == 0 {
		log.Warnf("cannot compute stage p-values: training set has %d tumor and %d normal samples", tumor, normal)
		for j := range pvalues {
			pvalues[j] = math.NaN()
		}
		return pvalues, nil
	}

	pvalue := glmPvalueFunc(samples, nPCA)
	log.Infof("computing p-values for %d genes (%d training samples, %d threads)", ngenes, len(training), threads)
	thr := &throttle{Max: threads}
	for j := 0; j < ngenes; j++ {
		j := j
		thr.Go(func() error {
			expr := make([]float64, len(training))
			for k, i := range training {
				expr[k] = x.At(i, j)
			}
			pvalues[j] = pvalue(expr)
			return nil
		})
	}
	return pvalues, thr.Wait()
}

func writeFeatureColumns(genes []string, pvalues []float64, outputDir string) error {
	fnm := outputDir + "/features.columns.csv"
	log.Infof("writing feature column labels to %s", fnm)
	return writeOutput(fnm, nil, func(w io.Writer) error {
		header := "Index,Gene"
		if pvalues != nil {
			header += ",PValue"
		}
		_, err := fmt.Fprintln(w, header)
		if err != nil {
			return err
		}
		for i, gene := range genes {
			if pvalues != nil {
				_, err = fmt.Fprintf(w, "%d,%s,%g\n", i, csvQuote(gene), pvalues[i])
			} else {
				_, err = fmt.Fprintf(w, "%d,%s\n", i, csvQuote(gene))
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}
