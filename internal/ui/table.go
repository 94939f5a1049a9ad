// Package ui renders command output for humans.
package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/lfrick/tix/internal/assoc"
	"github.com/lfrick/tix/internal/ui/styles"
)

// FormatAssociationsTable renders associations as an aligned table.
// When color is false the status column falls back to plain symbols,
// suitable for piped output.
func FormatAssociationsTable(assocs []assoc.Association, color bool) string {
	if len(assocs) == 0 {
		return ""
	}

	var output strings.Builder

	maxTicketWidth := len("TICKET")
	maxBranchWidth := len("BRANCH")
	maxRepoWidth := len("REPO")
	maxSourceWidth := len("SOURCE")

	type rowData struct {
		ticket string
		branch string
		repo   string
		source string
		stale  bool
	}
	var rowsData []rowData

	for _, a := range assocs {
		row := rowData{
			ticket: a.TicketID,
			branch: a.BranchName,
			repo:   filepath.Base(a.RepositoryPath),
			source: string(a.Source),
			stale:  a.Stale,
		}
		rowsData = append(rowsData, row)

		maxTicketWidth = max(maxTicketWidth, len(row.ticket))
		maxBranchWidth = max(maxBranchWidth, len(row.branch))
		maxRepoWidth = max(maxRepoWidth, len(row.repo))
		maxSourceWidth = max(maxSourceWidth, len(row.source))
	}

	header := fmt.Sprintf("%-*s  %-*s  %-*s  %-*s  %s",
		maxTicketWidth, "TICKET",
		maxBranchWidth, "BRANCH",
		maxRepoWidth, "REPO",
		maxSourceWidth, "SOURCE",
		"STATUS")
	if color {
		header = styles.Bold.Render(header)
	}
	output.WriteString(header)
	output.WriteString("\n")

	for _, row := range rowsData {
		status := "ok"
		if row.stale {
			status = "stale"
		}
		if color {
			if row.stale {
				status = styles.WarningStyle.Render(styles.StaleMark + " stale")
			} else {
				status = styles.SuccessStyle.Render(styles.CheckMark + " ok")
			}
		}

		fmt.Fprintf(&output, "%-*s  %-*s  %-*s  %-*s  %s\n",
			maxTicketWidth, row.ticket,
			maxBranchWidth, row.branch,
			maxRepoWidth, row.repo,
			maxSourceWidth, row.source,
			status)
	}

	return output.String()
}
