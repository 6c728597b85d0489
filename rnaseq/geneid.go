// Copyright (C) The tcgastage Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package rnaseq

import (
	"regexp"
)

// Gene ID map columns.
const (
	EnsemblGeneID    = "ensembl_gene_id"
	ExternalGeneName = "external_gene_name"
	EntrezGene       = "entrezgene"
)

var ensemblVersion = regexp.MustCompile(`\.\d*$`)

// Match is one row of a gene ID join: source row Row maps to target
// ID.
type Match struct {
	Row int
	ID  string
}

// JoinGeneIDs performs an inner join between the gene ID map m and
// a list of source IDs, matching m's from column against keys, and
// returns one Match per joined pair.
//
// Matches are ordered by map row, then by position in keys. A key
// with no map entry yields nothing; a key with several map entries
// yields one Match for each of them. Map rows with a null from or to
// value never match.
//
// If proteinCodingOnly is true, map rows with a null entrezgene
// value are ignored. If from is EnsemblGeneID, version suffixes
// (".12") are removed from keys before matching.
func JoinGeneIDs(keys []string, m *Table, from, to string, proteinCodingOnly bool) ([]Match, error) {
	err := m.requireColumns("gene ID map", from, to)
	if err != nil {
		return nil, err
	}
	entrezCol := -1
	if proteinCodingOnly {
		if err := m.requireColumns("gene ID map", EntrezGene); err != nil {
			return nil, err
		}
		entrezCol = m.ColumnIndex(EntrezGene)
	}
	fromCol, toCol := m.ColumnIndex(from), m.ColumnIndex(to)

	rowsByKey := map[string][]int{}
	for row, key := range keys {
		if from == EnsemblGeneID {
			key = ensemblVersion.ReplaceAllString(key, "")
		}
		rowsByKey[key] = append(rowsByKey[key], row)
	}

	var matches []Match
	for _, mrow := range m.Rows {
		if entrezCol >= 0 && IsNull(mrow[entrezCol]) {
			continue
		}
		if IsNull(mrow[fromCol]) || IsNull(mrow[toCol]) {
			continue
		}
		for _, row := range rowsByKey[mrow[fromCol]] {
			matches = append(matches, Match{Row: row, ID: mrow[toCol]})
		}
	}
	return matches, nil
}

// ConvertGeneID returns a copy of df whose gene IDs, taken from column
// colName (or the index, if colName is IndexColumn), are translated
// from namespace from to namespace to using the gene ID map m. See
// JoinGeneIDs for the join semantics.
//
// The result is indexed by the translated IDs, which are not
// necessarily unique. The source column, and any df columns named
// from or to, are dropped.
func ConvertGeneID(df *Table, m *Table, colName, from, to string, proteinCodingOnly bool) (*Table, error) {
	if colName != IndexColumn && !df.HasColumn(colName) {
		return nil, &ValidationError{What: "column", Name: colName, In: "table"}
	}
	keys, err := df.Column(colName)
	if err != nil {
		return nil, err
	}
	matches, err := JoinGeneIDs(keys, m, from, to, proteinCodingOnly)
	if err != nil {
		return nil, err
	}

	var keep []int
	out := &Table{IndexName: to}
	for i, c := range df.Columns {
		if c == colName || c == from || c == to {
			continue
		}
		keep = append(keep, i)
		out.Columns = append(out.Columns, c)
	}
	out.Index = make([]string, len(matches))
	out.Rows = make([][]string, len(matches))
	for i, match := range matches {
		out.Index[i] = match.ID
		row := make([]string, len(keep))
		for j, col := range keep {
			row[j] = df.Rows[match.Row][col]
		}
		out.Rows[i] = row
	}
	return out, nil
}

// ConvertExpressionIDs returns a copy of e whose gene IDs are
// translated from namespace from to namespace to using the gene ID
// map m, with the same join semantics as ConvertGeneID.
func ConvertExpressionIDs(e *Expression, m *Table, from, to string, proteinCodingOnly bool) (*Expression, error) {
	matches, err := JoinGeneIDs(e.Genes, m, from, to, proteinCodingOnly)
	if err != nil {
		return nil, err
	}
	rows := make([]int, len(matches))
	ids := make([]string, len(matches))
	for i, match := range matches {
		rows[i] = match.Row
		ids[i] = match.ID
	}
	out := e.takeRows(rows, ids)
	out.IndexName = to
	return out, nil
}
