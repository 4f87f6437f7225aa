package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/JaimeStill/flora/internal/identifications"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiGray   = "\x1b[90m"
)

const timeLayout = "2006-01-02 15:04"

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func statusColor(status string) string {
	switch status {
	case identifications.StatusSuccess:
		return ansiGreen
	case identifications.StatusFailed:
		return ansiRed
	case identifications.StatusPending:
		return ansiYellow
	case identifications.StatusNoMatch:
		return ansiGray
	default:
		return ""
	}
}

func renderStatus(status string, colorize bool) string {
	if colorize {
		if color := statusColor(status); color != "" {
			return color + status + ansiReset
		}
	}
	return status
}

func formatScore(score float64) string {
	return fmt.Sprintf("%.1f%%", score*100)
}

func topMatchName(rec identifications.Identification) string {
	if len(rec.Matches) == 0 {
		return "-"
	}
	return rec.Matches[0].Species.ScientificName
}

func topMatchScore(rec identifications.Identification) string {
	if len(rec.Matches) == 0 {
		return "-"
	}
	return formatScore(rec.Matches[0].Score)
}

func renderHistory(records []identifications.Identification, colorize bool) string {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.ID.String(),
			renderStatus(rec.Status, colorize),
			topMatchName(rec),
			topMatchScore(rec),
			rec.CreatedAt.Local().Format(timeLayout),
		})
	}
	return renderTable(
		[]string{"ID", "Status", "Top match", "Score", "Created"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	)
}

func renderIdentification(rec *identifications.Identification, colorize bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "ID:       %s\n", rec.ID)
	fmt.Fprintf(&b, "Status:   %s\n", renderStatus(rec.Status, colorize))
	if rec.Filename != nil {
		fmt.Fprintf(&b, "File:     %s\n", *rec.Filename)
	}
	fmt.Fprintf(&b, "Created:  %s\n", rec.CreatedAt.Local().Format(time.RFC3339))
	if rec.ErrorMessage != nil {
		fmt.Fprintf(&b, "Message:  %s\n", *rec.ErrorMessage)
	}
	if rec.ImageURL != nil {
		fmt.Fprintf(&b, "Image:    %s\n", *rec.ImageURL)
	}

	if len(rec.Matches) > 0 {
		rows := make([][]string, 0, len(rec.Matches))
		for i, m := range rec.Matches {
			rows = append(rows, []string{
				fmt.Sprintf("%d", i+1),
				m.Species.ScientificName,
				strings.Join(m.Species.CommonNames, ", "),
				m.Species.Family,
				formatScore(m.Score),
			})
		}
		b.WriteString("\n")
		b.WriteString(renderTable(
			[]string{"#", "Species", "Common names", "Family", "Score"},
			rows,
			[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight},
		))
		b.WriteString("\n")
	}

	return b.String()
}
