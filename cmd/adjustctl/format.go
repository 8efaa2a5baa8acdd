package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/noah-isme/tutoring-scheduler/internal/models"
)

var (
	styleHeader = lipgloss.NewStyle().Foreground(lipgloss.Color("#fe8019")).Bold(true)
	styleDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("#928374"))
	styleRed    = lipgloss.NewStyle().Foreground(lipgloss.Color("#fb4934"))
	styleYellow = lipgloss.NewStyle().Foreground(lipgloss.Color("#fabd2f"))
	styleGreen  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8ec07c"))
)

type nameIndex struct {
	students map[string]string
	teachers map[string]string
	rooms    map[string]string
}

func newNameIndex(students []models.Student, teachers []models.Teacher, rooms []models.Classroom) nameIndex {
	idx := nameIndex{
		students: make(map[string]string, len(students)),
		teachers: make(map[string]string, len(teachers)),
		rooms:    make(map[string]string, len(rooms)),
	}
	for _, s := range students {
		idx.students[s.ID] = orID(s.Name, s.ID)
	}
	for _, t := range teachers {
		idx.teachers[t.ID] = orID(t.Name, t.ID)
	}
	for _, r := range rooms {
		idx.rooms[r.ID] = orID(r.Name, r.ID)
	}
	return idx
}

func (n nameIndex) student(id string) string { return orID(n.students[id], id) }
func (n nameIndex) teacher(id string) string { return orID(n.teachers[id], id) }
func (n nameIndex) room(id string) string    { return orID(n.rooms[id], id) }

func orID(name, id string) string {
	if name == "" {
		return id
	}
	return name
}

func header(text string) string {
	upper := strings.ToUpper(text)
	return fmt.Sprintf("%s\n%s", styleHeader.Render(upper), styleDim.Render(strings.Repeat("─", lipgloss.Width(upper))))
}

func severityBadge(s models.Severity) string {
	switch s {
	case models.SeverityHigh:
		return styleRed.Render("● HIGH")
	case models.SeverityMedium:
		return styleYellow.Render("● MEDIUM")
	default:
		return styleGreen.Render("● LOW")
	}
}

func timeWindow(day, start, duration int) string {
	return fmt.Sprintf("%s %s-%s", models.DayName(day), models.SlotToClock(start), models.SlotToClock(start+duration))
}

func describeCourse(c models.Course, names nameIndex) string {
	return fmt.Sprintf("%s, %s with %s in %s", timeWindow(c.Day, c.StartSlot, c.Duration), c.Subject, names.teacher(c.TeacherID), names.room(c.ClassroomID))
}

func courseTable(courses []models.Course, names nameIndex) string {
	rows := make([][]string, 0, len(courses))
	for _, c := range courses {
		rows = append(rows, []string{
			names.student(c.StudentID),
			c.Subject,
			names.teacher(c.TeacherID),
			names.room(c.ClassroomID),
			timeWindow(c.Day, c.StartSlot, c.Duration),
			fmt.Sprintf("%.1f", c.Score),
		})
	}
	return renderTable([]string{"STUDENT", "SUBJECT", "TEACHER", "ROOM", "WHEN", "SCORE"}, rows)
}

func conflictBlock(c models.Conflict, limit int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s  %s\n", severityBadge(c.Severity), styleHeader.Render(orID(c.StudentName, c.StudentID)), styleDim.Render(string(c.ConflictType)))
	fmt.Fprintf(&b, "  %s\n", c.Reason)
	for i, s := range c.Suggestions {
		if limit > 0 && i >= limit {
			fmt.Fprintf(&b, "  %s\n", styleDim.Render(fmt.Sprintf("… %d more", len(c.Suggestions)-limit)))
			break
		}
		fmt.Fprintf(&b, "  %d. [%s %.2f] %s\n", i+1, s.Type, s.Confidence, s.Title)
		if s.Description != "" {
			fmt.Fprintf(&b, "     %s\n", styleDim.Render(s.Description))
		}
	}
	b.WriteString("\n")
	return b.String()
}

// renderTable pads columns to their widest visible cell.
func renderTable(headers []string, rows [][]string) string {
	const colGap = 2
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < len(headers) && i < len(row); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string, style *lipgloss.Style) {
		for i := range headers {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			pad := widths[i] - lipgloss.Width(cell)
			if style != nil {
				cell = style.Render(cell)
			}
			b.WriteString(cell)
			if i < len(headers)-1 {
				b.WriteString(strings.Repeat(" ", pad+colGap))
			}
		}
		b.WriteString("\n")
	}

	writeRow(headers, &styleHeader)
	separators := make([]string, len(widths))
	for i, w := range widths {
		separators[i] = strings.Repeat("─", w)
	}
	writeRow(separators, &styleDim)
	for _, row := range rows {
		writeRow(row, nil)
	}
	return b.String()
}
