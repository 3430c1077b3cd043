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

// importer builds the project-summary artifact from a VCF header and
// an optional population file. The VCF's sample column order becomes
// the canonical sample ordering for every later stage.
type importer struct {
	populationsFile string
	outputFile      string
}

func (cmd *importer) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var err error
	defer func() {
		if err != nil {
			fmt.Fprintf(stderr, "%s\n", err)
		}
	}()
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&cmd.populationsFile, "populations", "", "population `file` (label,sample1,sample2,... per line)")
	flags.StringVar(&cmd.outputFile, "o", "project.gob", "output project `file`")
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

func (cmd *importer) run(vcfFile string) error {
	vs, err := openVariantStream(vcfFile, nil)
	if err != nil {
		return err
	}
	defer vs.Close()
	ps := &ProjectSummary{
		SampleNames:  vs.fileSamples,
		Populations:  map[string][]string{},
		HeaderDigest: headerDigest(vs.headerLine),
	}
	vs.Close()
	log.Infof("%s: %d samples", vcfFile, len(ps.SampleNames))

	if cmd.populationsFile != "" {
		pops, err := readPopulations(cmd.populationsFile)
		if err != nil {
			return err
		}
		known := make(map[string]bool, len(ps.SampleNames))
		for _, s := range ps.SampleNames {
			known[s] = true
		}
		assigned := map[string]string{}
		for label, samples := range pops {
			for _, s := range samples {
				if !known[s] {
					return &UnknownSampleError{Sample: s}
				}
				if prev, dup := assigned[s]; dup {
					return fmt.Errorf("sample %q assigned to both %q and %q", s, prev, label)
				}
				assigned[s] = label
			}
		}
		ps.Populations = pops
		log.Infof("%s: %d populations, %d samples labeled", cmd.populationsFile, len(pops), len(assigned))
	}

	if err := writeGob(cmd.outputFile, ps); err != nil {
		return err
	}
	log.Infof("wrote %s", cmd.outputFile)
	return nil
}
