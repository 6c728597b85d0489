// Copyright (C) The tcgastage Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package tcgastage

import (
	"bufio"
	"io"
	"strings"
)

// protonTransporters is the curated gene set that is always included
// in the feature matrix, alongside the differentially expressed genes,
// unless a different list is given with -genes.
var protonTransporters = []string{
	"ATP6V0A1", "ATP6V1H", "CA11", "CA12", "AQP6", "ATP6V1D", "AQP8", "AQP9", "CA2",
	"ATP6V0A4", "CA9", "TCIRG1", "ATP6V0E1", "ATP6V1A", "ATP6V1B1", "ATP6V0B", "CA14",
	"ATP6V1F", "ATP6V1E1", "CA6", "CA1", "ATP6V1G1", "AQP10", "ATP6V1C2", "ATP6V1B2",
	"ATP6V0D2", "ATP6V1G3", "CA10", "ATP6V1C1", "ATP6V0D1", "AQP5", "CA3", "AQP7",
	"AQP7", "AQP3", "CA4", "AQP2", "CA7", "CA5B", "ATP6V0E2", "AQP4", "CA5A", "AQP11",
	"CA8", "AQP12A", "CA13", "AQP12B", "ATP6V0A2", "ATP6V0C", "ATP6V1G2", "AQP1",
	"ATP6V1E2", "AL845331.2", "SLC4A1", "SLC4A7", "SLC4A8", "SLC9A7", "SLC9A3", "SLC4A4",
	"SLC4A11", "SLC9A1", "SLC26A4", "SLC26A3", "SLC26A8", "SLC4A9", "SLC4A3", "SLC9A2",
	"SLC26A10", "SLC9A5", "SLC16A3", "SLC4A10", "SLC26A1", "SLC16A2", "SLC26A7",
	"SLC16A1", "SLC26A2", "SLC4A1AP", "SLC4A2", "SLC16A4", "SLC26A5", "SLC26A9",
	"SLC9A4", "SLC26A11", "SLC4A5", "SLC9A6", "SLC26A6",
}

// readGeneList reads gene IDs, one per line. Blank lines and lines
// starting with "#" are ignored. If a line has several comma- or
// tab-separated fields, only the first is used.
func readGeneList(rdr io.Reader) ([]string, error) {
	var genes []string
	scanner := bufio.NewScanner(rdr)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if i := strings.IndexAny(line, ",\t"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		genes = append(genes, line)
	}
	return genes, scanner.Err()
}
