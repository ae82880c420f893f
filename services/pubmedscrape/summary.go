package pubmedscrape

import (
	"github.com/jedib0t/go-pretty/v6/table"
)

// Summary renders the per-target outcomes of a run as a table.
func Summary(results []TargetResult) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "code", "url", "sections", "status"})
	for i, result := range results {
		status := "ok"
		if result.Err != nil {
			status = result.Err.Error()
		}
		t.AppendRow(table.Row{
			i + 1,
			result.Target.Code,
			result.Target.Url,
			result.Sections,
			status,
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", footerStatus(results)})
	return t.Render()
}

func footerStatus(results []TargetResult) string {
	failed := Failed(results)
	if failed == 0 {
		return "all targets scraped"
	}
	if failed == len(results) {
		return "all targets failed"
	}
	return "partial failure"
}
