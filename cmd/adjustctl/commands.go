package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/tutoring-scheduler/internal/models"
	"github.com/noah-isme/tutoring-scheduler/internal/service"
	"github.com/noah-isme/tutoring-scheduler/pkg/storage"
)

func (a *App) startSession(cmd *cobra.Command) (*service.AdjustmentService, error) {
	session, _, err := service.StartSession(cmd.Context(), a.matcher, *a.roster, service.BootstrapConfig{
		DefaultMaxHours: a.cfg.DefaultMaxHours,
		Logger:          a.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("matching failed: %w", err)
	}
	return session, nil
}

func matchCmd(app *App, opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Schedule every unscheduled student and list the conflicts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := app.startSession(cmd)
			if err != nil {
				return err
			}
			snapshot := session.GetModifiedData()
			conflicts := session.GetEnhancedConflicts()
			out := cmd.OutOrStdout()

			if opts.json {
				return writeJSON(out, map[string]interface{}{
					"courses":   snapshot.Courses,
					"conflicts": conflicts,
				})
			}

			names := newNameIndex(snapshot.Students, snapshot.Teachers, snapshot.Classrooms)
			fmt.Fprintln(out, header(fmt.Sprintf("Courses (%d)", len(snapshot.Courses))))
			fmt.Fprintln(out, courseTable(snapshot.Courses, names))
			fmt.Fprintln(out, header(fmt.Sprintf("Conflicts (%d)", len(conflicts))))
			for _, c := range conflicts {
				fmt.Fprint(out, conflictBlock(c, limit))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 3, "Suggestions shown per conflict")
	return cmd
}

func suggestCmd(app *App, opts *rootOptions) *cobra.Command {
	var (
		studentID string
		limit     int
	)
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Explain one student's conflict and rank the fixes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !hasStudent(app.roster.Students, studentID) {
				return fmt.Errorf("student %q is not in the roster", studentID)
			}
			session, err := app.startSession(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			var conflict *models.Conflict
			for _, c := range session.GetEnhancedConflicts() {
				if c.StudentID == studentID {
					c := c
					conflict = &c
					break
				}
			}

			if conflict == nil {
				snapshot := session.GetModifiedData()
				names := newNameIndex(snapshot.Students, snapshot.Teachers, snapshot.Classrooms)
				for _, course := range snapshot.Courses {
					if course.StudentID == studentID {
						if opts.json {
							return writeJSON(out, course)
						}
						fmt.Fprintf(out, "%s is scheduled: %s\n", names.student(studentID), describeCourse(course, names))
						return nil
					}
				}
				return fmt.Errorf("student %q has neither a course nor a conflict", studentID)
			}

			if opts.json {
				return writeJSON(out, conflict)
			}
			fmt.Fprint(out, conflictBlock(*conflict, limit))
			return nil
		},
	}
	cmd.Flags().StringVarP(&studentID, "student", "s", "", "Student ID")
	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "Suggestions shown")
	_ = cmd.MarkFlagRequired("student")
	return cmd
}

func reportCmd(app *App) *cobra.Command {
	var (
		format string
		outDir string
		retain time.Duration
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write the conflict report of a matching pass to disk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := app.startSession(cmd)
			if err != nil {
				return err
			}
			report, err := service.NewExportService(app.logger).ConflictReport(session.GetEnhancedConflicts(), service.ReportFormat(format))
			if err != nil {
				return err
			}
			archive, err := storage.NewReportArchive(outDir)
			if err != nil {
				return err
			}
			path, err := archive.Save(report.Filename, report.Body)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)

			if retain > 0 {
				deleted, err := archive.CleanupOlderThan(retain)
				if err != nil {
					return err
				}
				for _, name := range deleted {
					fmt.Fprintln(cmd.OutOrStdout(), styleDim.Render("removed "+name))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "Report format: csv or pdf")
	cmd.Flags().StringVarP(&outDir, "out", "o", "./reports", "Directory the report is written to")
	cmd.Flags().DurationVar(&retain, "retain", 0, "Remove reports older than this after writing")
	return cmd
}

func hasStudent(students []models.Student, id string) bool {
	for _, s := range students {
		if s.ID == id {
			return true
		}
	}
	return false
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
