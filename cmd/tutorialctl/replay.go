package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/gonewx/clinicdesk/pkg/app"
	"github.com/gonewx/clinicdesk/pkg/modules"
	"github.com/gonewx/clinicdesk/pkg/replay"
	"github.com/gonewx/clinicdesk/pkg/tutorial"
)

var replayQuiet bool

var replayCmd = &cobra.Command{
	Use:   "replay [script.yaml]",
	Short: "Drive the tutorial engine with a scripted call stream",
	Args:  cobra.ExactArgs(1),
	RunE:  runReplay,
}

func runReplay(cmd *cobra.Command, args []string) error {
	script, err := replay.Load(args[0])
	if err != nil {
		return err
	}
	data, err := app.LoadDeskData(dataPaths())
	if err != nil {
		return err
	}
	res, err := replayScript(cmd.OutOrStdout(), data, script, replayQuiet)
	if err != nil {
		return err
	}
	if !res.Finished {
		step, _ := data.Catalog.At(res.State.CurrentStepIndex)
		return fmt.Errorf("script ended with the tutorial still active at step %q", step.ID)
	}
	return nil
}

// replayScript 用控制台表现层回放脚本
func replayScript(out io.Writer, data *app.DeskData, script *replay.Script, quiet bool) (replay.Result, error) {
	r := lipgloss.NewRenderer(out)
	callStyle := r.NewStyle().Foreground(lipgloss.Color("240"))

	var presenter tutorial.Presenter
	if !quiet {
		presenter = modules.NewConsolePresenter(out)
	}
	var outcome tutorial.Outcome
	engine := tutorial.NewEngine(data.Catalog, tutorial.Options{
		Gates:          *data.Gates,
		Presenter:      presenter,
		Messages:       data.Steps.Messages,
		DefaultSpeaker: data.Steps.DefaultSpeaker,
		OnExit:         func(o tutorial.Outcome) { outcome = o },
	})

	res, err := replay.Run(engine, script, func(i int, kind string, call replay.Call) {
		if quiet {
			return
		}
		fmt.Fprintln(out, callStyle.Render(fmt.Sprintf("#%d %s", i, describeCall(kind, call))))
	})
	if err != nil {
		return res, err
	}
	if !quiet {
		for _, name := range res.EnabledNames() {
			state := "disabled"
			if res.Enabled[name] {
				state = "enabled"
			}
			fmt.Fprintf(out, "control %s: %s\n", name, state)
		}
	}
	if res.Finished {
		fmt.Fprintf(out, "outcome: %s (%d calls)\n", outcome, res.Executed)
	}
	return res, nil
}

func describeCall(kind string, c replay.Call) string {
	switch kind {
	case "ready":
		return "ready " + c.Ready
	case "closed":
		return "closed " + c.Closed
	case "event":
		if c.ErrorCount > 0 {
			return fmt.Sprintf("event %s errorCount=%d", c.Event, c.ErrorCount)
		}
		return "event " + c.Event
	case "seek":
		return fmt.Sprintf("seek %+d", c.Seek)
	case "seekTo":
		return "seekTo " + c.SeekTo
	case "register":
		r := c.Register
		return fmt.Sprintf("register %s@%s (%g,%g %gx%g)", r.Name, r.Screen, r.X, r.Y, r.W, r.H)
	case "unregister":
		return "unregister " + c.Unregister
	default:
		return kind
	}
}

func init() {
	replayCmd.Flags().BoolVarP(&replayQuiet, "quiet", "q", false, "only print the outcome")
	rootCmd.AddCommand(replayCmd)
}
