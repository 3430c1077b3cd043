// Copyright (C) The Vcfassoc Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package vcfassoc

import (
	"flag"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
)

// popAssoc runs per-variant population association tests: a 2xK
// allele-count chi-squared test of independence, or a logistic
// likelihood-ratio test when exactly two populations are defined.
type popAssoc struct {
	projectFile string
	outputFile  string
	test        string
	workers     int
	filter      mafFilter
}

func (cmd *popAssoc) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var err error
	defer func() {
		if err != nil {
			fmt.Fprintf(stderr, "%s\n", err)
		}
	}()
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&cmd.projectFile, "project", "project.gob", "project `file` written by import")
	flags.StringVar(&cmd.outputFile, "o", "assoc.tsv", "output `file`")
	flags.StringVar(&cmd.test, "test", "chisq", "association test: chisq or logistic")
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

func (cmd *popAssoc) run(vcfFile string) error {
	ps, err := loadProject(cmd.projectFile)
	if err != nil {
		return err
	}
	if len(ps.Populations) == 0 {
		return fmt.Errorf("%s: project has no populations (re-run import with -populations)", cmd.projectFile)
	}

	// Only labeled samples participate, in canonical order.
	popOf := ps.populationOf()
	ordering := make([]string, 0, len(ps.SampleNames))
	for _, s := range ps.SampleNames {
		if _, ok := popOf[s]; ok {
			ordering = append(ordering, s)
		}
	}
	if len(ordering) == 0 {
		return fmt.Errorf("%s: no sample in the VCF belongs to any population", cmd.projectFile)
	}
	popIdx, popNames := populationIndex(ps, ordering)

	var compute func(*variantRecord) ([]testResult, error)
	switch cmd.test {
	case "chisq":
		compute = populationTester(popIdx, len(popNames))
	case "logistic":
		if len(popNames) != 2 {
			return fmt.Errorf("logistic test needs exactly 2 populations, project has %d", len(popNames))
		}
		compute = logisticTester(popIdx)
	default:
		return fmt.Errorf("unknown test %q (want chisq or logistic)", cmd.test)
	}

	vs, err := openVariantStream(vcfFile, ordering)
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
	log.Infof("testing %d samples in %d populations (%s)", len(ordering), len(popNames), cmd.test)
	if err := mapVariants(fs, cmd.workers, compute, rw.Write); err != nil {
		rw.Close()
		return err
	}
	if err := rw.Close(); err != nil {
		return fmt.Errorf("write %s: %w", cmd.outputFile, err)
	}
	log.Infof("done: %d variants tested, %d dropped by MAF filter", rw.n, fs.dropped)
	return nil
}
