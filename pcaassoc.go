// Copyright (C) The Vcfassoc Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package vcfassoc

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

// pcaAssoc runs one-way ANOVA association tests between genotype
// categories and principal-component coordinates, one p-value per
// (variant, component) pair.
type pcaAssoc struct {
	projectFile string
	modelFile   string
	coordsFile  string
	npyFile     string
	components  string
	outputFile  string
	workers     int
	filter      mafFilter
}

func (cmd *pcaAssoc) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var err error
	defer func() {
		if err != nil {
			fmt.Fprintf(stderr, "%s\n", err)
		}
	}()
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&cmd.projectFile, "project", "project.gob", "project `file` written by import")
	flags.StringVar(&cmd.modelFile, "model", "", "model `file` written by pca")
	flags.StringVar(&cmd.coordsFile, "coords", "", "tab-separated coordinate `file` (sample, pc1, pc2, ...)")
	flags.StringVar(&cmd.npyFile, "npy", "", "npy coordinate matrix `file` in canonical sample order")
	flags.StringVar(&cmd.components, "components", "", "comma-separated 1-based `components` to test (default: all)")
	flags.StringVar(&cmd.outputFile, "o", "pca-assoc.tsv", "output `file`")
	flags.IntVar(&cmd.workers, "workers", 1, "number of concurrent test workers (output order is preserved)")
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

func (cmd *pcaAssoc) run(vcfFile string) error {
	ps, err := loadProject(cmd.projectFile)
	if err != nil {
		return err
	}
	coords, err := cmd.loadCoords(ps)
	if err != nil {
		return err
	}
	rows, cols := coords.Dims()
	if rows != len(ps.SampleNames) {
		return fmt.Errorf("coordinate matrix has %d rows for %d project samples", rows, len(ps.SampleNames))
	}
	components, err := parseComponents(cmd.components, cols)
	if err != nil {
		return err
	}
	compute, err := pcaTester(coords, components)
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

	rw, err := createResultWriter(cmd.outputFile)
	if err != nil {
		return err
	}
	log.Infof("testing %d samples against components %v", len(ps.SampleNames), components)
	if err := mapVariants(fs, cmd.workers, compute, rw.Write); err != nil {
		rw.Close()
		return err
	}
	if err := rw.Close(); err != nil {
		return fmt.Errorf("write %s: %w", cmd.outputFile, err)
	}
	log.Infof("done: %d results, %d variants dropped by MAF filter", rw.n, fs.dropped)
	return nil
}

// loadCoords reads the coordinate matrix from whichever of -model,
// -coords, -npy was given, reindexed to the project's canonical
// sample ordering where the source carries sample names.
func (cmd *pcaAssoc) loadCoords(ps *ProjectSummary) (*mat.Dense, error) {
	given := 0
	for _, f := range []string{cmd.modelFile, cmd.coordsFile, cmd.npyFile} {
		if f != "" {
			given++
		}
	}
	if given != 1 {
		return nil, fmt.Errorf("exactly one of -model, -coords, -npy must be given")
	}
	switch {
	case cmd.modelFile != "":
		model, err := loadModel(cmd.modelFile)
		if err != nil {
			return nil, err
		}
		coords, err := model.Projections()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", cmd.modelFile, err)
		}
		return reindexRows(coords, model.SampleNames, ps.SampleNames)
	case cmd.coordsFile != "":
		samples, coords, err := readCoordsTSVFile(cmd.coordsFile)
		if err != nil {
			return nil, err
		}
		return reindexRows(coords, samples, ps.SampleNames)
	default:
		return readCoordsNpy(cmd.npyFile)
	}
}

// reindexRows reorders the matrix rows from "have" sample order to
// "want" sample order.
func reindexRows(m *mat.Dense, have, want []string) (*mat.Dense, error) {
	rows, cols := m.Dims()
	if rows != len(have) {
		return nil, fmt.Errorf("coordinate matrix has %d rows for %d sample names", rows, len(have))
	}
	rowOf := make(map[string]int, len(have))
	for i, s := range have {
		rowOf[s] = i
	}
	out := mat.NewDense(len(want), cols, nil)
	for i, s := range want {
		j, ok := rowOf[s]
		if !ok {
			return nil, fmt.Errorf("no coordinates for sample %q", s)
		}
		out.SetRow(i, mat.Row(nil, j, m))
	}
	return out, nil
}

// parseComponents parses "-components 1,2,3". Empty means all
// available components.
func parseComponents(s string, max int) ([]int, error) {
	if s == "" {
		all := make([]int, max)
		for i := range all {
			all[i] = i + 1
		}
		return all, nil
	}
	var out []int
	for _, tok := range strings.Split(s, ",") {
		c, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil {
			return nil, fmt.Errorf("bad component %q", tok)
		}
		if c < 1 || c > max {
			return nil, &ComponentIndexError{Component: c, Max: max}
		}
		out = append(out, c)
	}
	return out, nil
}
