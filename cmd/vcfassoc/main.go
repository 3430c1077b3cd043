// Copyright (C) The Vcfassoc Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package main

import (
	"github.com/vcfassoc/vcfassoc"
)

func main() {
	vcfassoc.Main()
}
