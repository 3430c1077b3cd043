// Copyright (C) The Vcfassoc Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package vcfassoc

import (
	"bytes"
	"os"
	"strings"

	"gopkg.in/check.v1"
)

type resultsSuite struct{}

var _ = check.Suite(&resultsSuite{})

func (s *resultsSuite) TestFormat(c *check.C) {
	var buf bytes.Buffer
	rw, err := newResultWriter(&buf)
	c.Assert(err, check.IsNil)
	c.Assert(rw.Write(testResult{Component: "1", Chrom: "1", Pos: 100, P: 1}), check.IsNil)
	c.Assert(rw.Write(testResult{Component: "2", Chrom: "X", Pos: 7, P: 0.004677734981063}), check.IsNil)
	c.Assert(rw.Write(testResult{Component: "1", Chrom: "2", Pos: 1, P: 0}), check.IsNil)
	c.Assert(rw.Close(), check.IsNil)

	lines := strings.Split(buf.String(), "\n")
	c.Assert(lines, check.HasLen, 5)
	c.Check(lines[0], check.Equals, "component\tchrom\tpos\tpvalue")
	c.Check(lines[1], check.Equals, "1\t1\t100\t1.00E+00")
	c.Check(lines[2], check.Equals, "2\tX\t7\t4.68E-03")
	c.Check(lines[3], check.Equals, "1\t2\t1\t0.00E+00")
	c.Check(lines[4], check.Equals, "")
}

func (s *resultsSuite) TestOneLinePerResult(c *check.C) {
	var buf bytes.Buffer
	rw, err := newResultWriter(&buf)
	c.Assert(err, check.IsNil)
	for i := 0; i < 1000; i++ {
		c.Assert(rw.Write(testResult{Component: "1", Chrom: "1", Pos: i, P: 0.5}), check.IsNil)
	}
	c.Assert(rw.Close(), check.IsNil)
	c.Check(rw.n, check.Equals, int64(1000))
	c.Check(strings.Count(buf.String(), "\n"), check.Equals, 1001)
}

func (s *resultsSuite) TestCreateTruncates(c *check.C) {
	fnm := c.MkDir() + "/out.tsv"
	c.Assert(os.WriteFile(fnm, []byte("stale content, much longer than a header line\n"), 0666), check.IsNil)
	rw, err := createResultWriter(fnm)
	c.Assert(err, check.IsNil)
	c.Assert(rw.Close(), check.IsNil)
	buf, err := os.ReadFile(fnm)
	c.Assert(err, check.IsNil)
	c.Check(string(buf), check.Equals, "component\tchrom\tpos\tpvalue\n")
}
