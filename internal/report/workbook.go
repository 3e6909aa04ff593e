package report

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/curricuforge/internal/curriculum"
)

const summarySheet = "Summary"

var (
	summaryHeader = []any{"#", "Curriculum", "Duration", "Topics", "Completed", "Percent"}
	topicHeader   = []any{"Period", "Course", "Code", "Topic", "Difficulty", "Completed", "Quiz"}
)

// WriteWorkbook writes a progress workbook: a summary sheet with one row per
// curriculum and one sheet of topic rows per curriculum.
func WriteWorkbook(w io.Writer, docs []*curriculum.Document) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := writeRow(f, summarySheet, 1, summaryHeader); err != nil {
		return err
	}
	if err := f.SetRowStyle(summarySheet, 1, 1, bold); err != nil {
		return fmt.Errorf("style summary header: %w", err)
	}

	used := map[string]bool{strings.ToLower(summarySheet): true}
	for i, doc := range docs {
		stats := curriculum.ComputeStats(doc)
		row := []any{i + 1, doc.Title, doc.Duration(), stats.Total, stats.Completed, stats.Percent}
		if err := writeRow(f, summarySheet, i+2, row); err != nil {
			return err
		}

		name := sheetName(doc.Title, used)
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %q: %w", name, err)
		}
		if err := writeTopics(f, name, doc); err != nil {
			return err
		}
		if err := f.SetRowStyle(name, 1, 1, bold); err != nil {
			return fmt.Errorf("style sheet %q header: %w", name, err)
		}
		if err := f.SetColWidth(name, "A", "D", 28); err != nil {
			return fmt.Errorf("size sheet %q: %w", name, err)
		}
	}
	if err := f.SetColWidth(summarySheet, "B", "B", 40); err != nil {
		return fmt.Errorf("size summary sheet: %w", err)
	}
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeTopics(f *excelize.File, sheet string, doc *curriculum.Document) error {
	if err := writeRow(f, sheet, 1, topicHeader); err != nil {
		return err
	}
	row := 2
	for _, p := range doc.Periods {
		for _, c := range p.Courses {
			for _, t := range c.Topics {
				quiz := ""
				if t.Quiz != nil {
					quiz = fmt.Sprintf("%d questions", len(t.Quiz.Questions))
				}
				if err := writeRow(f, sheet, row, []any{
					p.Label, c.Name, c.Code, t.Title, string(t.Difficulty), yesNo(t.Completed), quiz,
				}); err != nil {
					return err
				}
				row++
			}
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("address row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s!%s: %w", sheet, cell, err)
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// sheetName derives a valid, unused sheet name from a title. Excel limits
// names to 31 characters, forbids :\/?*[] and compares them case-insensitively.
func sheetName(title string, used map[string]bool) string {
	base := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return ' '
		}
		return r
	}, title)
	base = strings.Trim(strings.Join(strings.Fields(base), " "), "'")
	if base == "" {
		base = "Curriculum"
	}

	name := truncateRunes(base, 31)
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		name = truncateRunes(base, 31-len(suffix)) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}
