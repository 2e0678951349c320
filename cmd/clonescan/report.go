package main

import (
	"fmt"
	"strconv"

	"github.com/panbanda/clonescan/internal/output"
	"github.com/panbanda/clonescan/pkg/analyzer/duplicates"
)

// buildReport lays out an analysis for text and markdown. JSON and TOON
// serialize the analysis itself.
func buildReport(a *duplicates.Analysis, colored bool) *output.Report {
	s := a.Summary
	summary := &output.Fields{
		Title: "Summary",
		Items: []output.Field{
			{Label: "Files scanned", Value: strconv.Itoa(a.TotalFilesScanned)},
			{Label: "Duplicate groups", Value: fmt.Sprintf("%d (%d critical, %d tolerable)", s.TotalGroups, s.CriticalCount, s.TolerableCount)},
			{Label: "Duplicated lines", Value: fmt.Sprintf("%d of %d (%.1f%%)", s.DuplicatedLines, s.TotalLines, s.DuplicationRatio*100)},
			{Label: "Block size", Value: fmt.Sprintf("mean %.1f, p90 %.1f, max %d", s.MeanBlockLines, s.P90BlockLines, s.MaxBlockLines)},
			{Label: "Boilerplate skipped", Value: strconv.Itoa(s.BoilerplateSkipped)},
		},
	}

	blocks := []output.Block{summary}
	if len(a.Groups) > 0 {
		blocks = append(blocks, groupsTable(a.Groups, colored))
	}
	if len(s.Hotspots) > 0 {
		blocks = append(blocks, hotspotsTable(s.Hotspots))
	}

	return &output.Report{
		Title:  "Duplicate Code",
		Blocks: blocks,
		Data:   a,
	}
}

func groupsTable(groups []duplicates.Group, colored bool) *output.Table {
	rows := make([][]string, len(groups))
	total := 0
	for i, g := range groups {
		severity := g.Severity.String()
		if colored {
			severity = output.SeverityColor(severity, severity)
		}
		sample := ""
		if len(g.Sample) > 0 {
			sample = truncate(g.Sample[0], 60)
		}
		rows[i] = []string{
			strconv.Itoa(g.Lines),
			strconv.Itoa(g.Occurrences()),
			severity,
			formatSpans(g.Spans),
			sample,
		}
		total += g.Lines * g.Occurrences()
	}

	return &output.Table{
		Title:   "Duplicate Groups",
		Headers: []string{"Lines", "Occurrences", "Severity", "Locations", "Sample"},
		Rows:    rows,
		Footer:  []string{"", "", "", fmt.Sprintf("%d groups", len(groups)), fmt.Sprintf("%d lines", total)},
	}
}

func hotspotsTable(hotspots []duplicates.Hotspot) *output.Table {
	rows := make([][]string, len(hotspots))
	for i, h := range hotspots {
		rows[i] = []string{
			h.File,
			strconv.Itoa(h.DuplicateLines),
			strconv.Itoa(h.CloneGroupCount),
			fmt.Sprintf("%.2f", h.Severity),
		}
	}
	return &output.Table{
		Title:   "Hotspots",
		Headers: []string{"File", "Duplicated Lines", "Groups", "Score"},
		Rows:    rows,
	}
}
