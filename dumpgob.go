// Copyright (C) The Vcfassoc Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package vcfassoc

import (
	"flag"
	"fmt"
	"io"
	"sort"
)

// dumpProject prints the contents of a project or model artifact in
// human-readable form, for debugging.
type dumpProject struct {
	model bool
}

func (cmd *dumpProject) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var err error
	defer func() {
		if err != nil {
			fmt.Fprintf(stderr, "%s\n", err)
		}
	}()
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.BoolVar(&cmd.model, "model", false, "input is a model artifact, not a project artifact")
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

	if cmd.model {
		err = cmd.dumpModel(flags.Arg(0), stdout)
	} else {
		err = cmd.dump(flags.Arg(0), stdout)
	}
	if err != nil {
		return 1
	}
	return 0
}

func (cmd *dumpProject) dump(filename string, stdout io.Writer) error {
	ps, err := loadProject(filename)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "samples\t%d\n", len(ps.SampleNames))
	for i, s := range ps.SampleNames {
		fmt.Fprintf(stdout, "sample\t%d\t%s\n", i, s)
	}
	labels := make([]string, 0, len(ps.Populations))
	for label := range ps.Populations {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		fmt.Fprintf(stdout, "population\t%s\t%d\n", label, len(ps.Populations[label]))
	}
	fmt.Fprintf(stdout, "headerdigest\t%x\n", ps.HeaderDigest)
	return nil
}

func (cmd *dumpProject) dumpModel(filename string, stdout io.Writer) error {
	m, err := loadModel(filename)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "samples\t%d\ncomponents\t%d\n", len(m.SampleNames), m.Components)
	keys := make([]string, 0, len(m.Matrices))
	for key := range m.Matrices {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(stdout, "matrix\t%s\t%d\n", key, len(m.Matrices[key]))
	}
	return nil
}
