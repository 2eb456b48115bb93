package main

import (
	"errors"
	"fmt"

	"github.com/Donekulda/openproject-mcp-server/internal/report"
	"github.com/spf13/cobra"
)

var reportFlags struct {
	projectID  int
	fromDate   string
	toDate     string
	sprintGoal string
	teamName   string
	format     string
	thisWeek   bool
	lastWeek   bool
	dataOnly   bool
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate one report and print it to stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		if reportFlags.projectID <= 0 {
			return errors.New("--project is required")
		}

		a := newApp(cmd.Context())
		defer a.close()

		var out string
		switch {
		case reportFlags.thisWeek:
			out = a.gen.GenerateThisWeek(cmd.Context(), reportFlags.projectID, reportFlags.teamName)
		case reportFlags.lastWeek:
			out = a.gen.GenerateLastWeek(cmd.Context(), reportFlags.projectID, reportFlags.teamName)
		case reportFlags.dataOnly:
			out = a.gen.ExportData(cmd.Context(), reportFlags.projectID, reportFlags.fromDate, reportFlags.toDate)
		default:
			out = a.gen.Generate(cmd.Context(), report.Params{
				ProjectID:  reportFlags.projectID,
				FromDate:   reportFlags.fromDate,
				ToDate:     reportFlags.toDate,
				SprintGoal: reportFlags.sprintGoal,
				TeamName:   reportFlags.teamName,
				Format:     reportFlags.format,
			})
		}
		fmt.Println(out)
		return nil
	},
}

func init() {
	f := reportCmd.Flags()
	f.IntVar(&reportFlags.projectID, "project", 0, "project ID to report on")
	f.StringVar(&reportFlags.fromDate, "from", "", "report start date (YYYY-MM-DD)")
	f.StringVar(&reportFlags.toDate, "to", "", "report end date (YYYY-MM-DD)")
	f.StringVar(&reportFlags.sprintGoal, "sprint-goal", "", "sprint goal text")
	f.StringVar(&reportFlags.teamName, "team", "", "team/squad name")
	f.StringVar(&reportFlags.format, "format", "markdown", "output format: markdown or json")
	f.BoolVar(&reportFlags.thisWeek, "this-week", false, "report on the current Monday-Sunday week")
	f.BoolVar(&reportFlags.lastWeek, "last-week", false, "report on the previous Monday-Sunday week")
	f.BoolVar(&reportFlags.dataOnly, "data", false, "emit the structured data export instead of a report")
}
