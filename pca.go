// Copyright (C) The Vcfassoc Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package vcfassoc

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/james-bowman/nlp"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

// pcaCmd fits a PCA on the alt-allele dosage matrix of the filtered
// variant stream and writes the per-sample projections as a model
// artifact. The association engines only ever consume the resulting
// matrix; they never compute projections themselves.
type pcaCmd struct {
	projectFile  string
	outputFile   string
	npyOutput    string
	coordsOutput string
	components   int
	filter       mafFilter
}

func (cmd *pcaCmd) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var err error
	defer func() {
		if err != nil {
			fmt.Fprintf(stderr, "%s\n", err)
		}
	}()
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&cmd.projectFile, "project", "project.gob", "project `file` written by import")
	flags.StringVar(&cmd.outputFile, "o", "model.gob", "output model `file`")
	flags.StringVar(&cmd.npyOutput, "npy-output", "", "also write projections to npy `file`")
	flags.StringVar(&cmd.coordsOutput, "coords-output", "", "also write projections to tab-separated `file`")
	flags.IntVar(&cmd.components, "components", 4, "number of principal components")
	cmd.filter.Flags(flags)
	loglevel := flags.String("loglevel", "info", "logging threshold (trace, debug, info, warn, error, fatal, or panic)")
	err = flags.Parse(args)
	if err == flag.ErrHelp {
		err = nil
		return 0
	} else if err != nil {
		return 2
	} else if flags.NArg() != 1 {
		flags.Usage()
		return 2
	}

	lvl, err := log.ParseLevel(*loglevel)
	if err != nil {
		return 2
	}
	log.SetLevel(lvl)

	err = cmd.run(flags.Arg(0))
	if err != nil {
		return 1
	}
	return 0
}

func (cmd *pcaCmd) run(vcfFile string) error {
	if cmd.components < 1 {
		return fmt.Errorf("-components must be at least 1")
	}
	ps, err := loadProject(cmd.projectFile)
	if err != nil {
		return err
	}
	vs, err := openVariantStream(vcfFile, ps.SampleNames)
	if err != nil {
		return err
	}
	defer vs.Close()
	if headerDigest(vs.headerLine) != ps.HeaderDigest {
		log.Warnf("%s: header differs from the VCF given to import", vcfFile)
	}
	fs := newFilteredVariantStream(vs, &cmd.filter)

	log.Info("reading dosage matrix")
	nsamples := len(ps.SampleNames)
	var columns [][]float64
	for fs.Next() {
		columns = append(columns, altDosage(fs.Variant()))
	}
	if err := fs.Err(); err != nil {
		return err
	}
	log.Infof("%d variants kept, %d dropped by MAF filter", len(columns), fs.dropped)
	if len(columns) == 0 {
		return fmt.Errorf("%s: no variants passed the MAF filter", vcfFile)
	}
	if cmd.components > nsamples || cmd.components > len(columns) {
		return fmt.Errorf("cannot fit %d components from %d samples x %d variants", cmd.components, nsamples, len(columns))
	}

	data := make([]float64, nsamples*len(columns))
	for j, col := range columns {
		for i, v := range col {
			data[i*len(columns)+j] = v
		}
	}
	// nlp expects one column per observation.
	mtx := mat.NewDense(nsamples, len(columns), data).T()

	log.Info("fitting")
	transformer := nlp.NewPCA(cmd.components)
	transformer.Fit(mtx)
	log.Info("transforming")
	transformed, err := transformer.Transform(mtx)
	if err != nil {
		return err
	}
	projected := transformed.T()

	rows, cols := projected.Dims()
	if rows != nsamples || cols != cmd.components {
		return fmt.Errorf("PCA produced a %dx%d matrix, want %dx%d", rows, cols, nsamples, cmd.components)
	}
	proj := make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			proj[i*cols+j] = projected.At(i, j)
		}
	}

	model := &PCAModel{
		SampleNames: ps.SampleNames,
		Components:  cmd.components,
		Matrices:    map[string][]float64{projectionsKey: proj},
	}
	if err := writeGob(cmd.outputFile, model); err != nil {
		return err
	}
	log.Infof("wrote %s", cmd.outputFile)

	if cmd.npyOutput != "" || cmd.coordsOutput != "" {
		coords := mat.NewDense(rows, cols, proj)
		if cmd.npyOutput != "" {
			if err := writeCoordsNpy(cmd.npyOutput, coords); err != nil {
				return err
			}
			log.Infof("wrote %s", cmd.npyOutput)
		}
		if cmd.coordsOutput != "" {
			f, err := os.OpenFile(cmd.coordsOutput, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0666)
			if err != nil {
				return err
			}
			err = writeCoordsTSV(f, ps.SampleNames, coords)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return fmt.Errorf("write %s: %w", cmd.coordsOutput, err)
			}
			log.Infof("wrote %s", cmd.coordsOutput)
		}
	}
	return nil
}
