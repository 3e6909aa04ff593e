package report

import (
	"fmt"
	"strings"
	"time"
)

// fileStem joins the words of a title with underscores.
func fileStem(title string) string {
	stem := strings.Join(strings.Fields(title), "_")
	if stem == "" {
		return "Untitled"
	}
	return stem
}

// DocumentFileName is the download name of a single curriculum report.
func DocumentFileName(title string) string {
	return fileStem(title) + "_Curriculum.pdf"
}

// PortfolioFileName is the download name of the combined report.
func PortfolioFileName(now time.Time) string {
	return fmt.Sprintf("CurricuForge_Complete_Portfolio_%d.pdf", now.UnixMilli())
}

// WorkbookFileName is the download name of a progress workbook.
func WorkbookFileName(title string) string {
	return fileStem(title) + "_Progress.xlsx"
}

// YAMLFileName is the download name of a curriculum exported as YAML.
func YAMLFileName(title string) string {
	return fileStem(title) + "_Curriculum.yaml"
}
