// Copyright (C) The tcgastage Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package main

import "github.com/csbl/tcgastage"

func main() {
	tcgastage.Main()
}
