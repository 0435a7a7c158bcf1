package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/gonewx/clinicdesk/pkg/config"
	"github.com/gonewx/clinicdesk/pkg/tutorial"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the tutorial steps in order",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	steps, err := config.LoadStepCatalog(stepsPath)
	if err != nil {
		return err
	}
	listSteps(cmd.OutOrStdout(), steps.Steps)
	return nil
}

// stepRow 表格中的一行
func stepRow(i int, s tutorial.StepDescriptor) []string {
	var notes []string
	if s.AllowFreeOperation {
		notes = append(notes, "free")
	}
	if s.ErrorFeedback {
		notes = append(notes, "errorFeedback")
	}
	if s.SkipWhen != "" {
		notes = append(notes, "skipWhen "+s.SkipWhen)
	}
	completion := s.CompletionEvent
	if completion == tutorial.EventManualNext {
		completion = "(next)"
	}
	return []string{
		strconv.Itoa(i),
		s.ID,
		strconv.Itoa(s.Phase),
		s.Screen,
		string(s.Action),
		s.TargetControl,
		completion,
		strings.Join(notes, ", "),
	}
}

func listSteps(out io.Writer, steps []tutorial.StepDescriptor) {
	r := lipgloss.NewRenderer(out)
	headerStyle := r.NewStyle().Bold(true).Foreground(lipgloss.Color("51")).Padding(0, 1)
	cellStyle := r.NewStyle().Padding(0, 1)

	rows := make([][]string, len(steps))
	for i, s := range steps {
		rows[i] = stepRow(i, s)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers("#", "ID", "PHASE", "SCREEN", "ACTION", "TARGET", "COMPLETES ON", "NOTES").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(out, t.Render())
}

func init() {
	rootCmd.AddCommand(listCmd)
}
