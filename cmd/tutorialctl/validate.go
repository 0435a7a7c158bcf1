package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/gonewx/clinicdesk/pkg/config"
	"github.com/gonewx/clinicdesk/pkg/game"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate steps, gates, screens and strings and cross-check them",
	Args:  cobra.NoArgs,
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	return validate(cmd.OutOrStdout(), dataPaths())
}

// validate 逐个加载数据文件，再做跨文件一致性检查
// 单个文件加载失败时直接返回；一致性问题全部输出后再判断
func validate(out io.Writer, paths config.DataPaths) error {
	r := lipgloss.NewRenderer(out)
	okStyle := r.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle := r.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle := r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	strs, err := game.NewClinicStrings(paths.Strings)
	if err != nil {
		return err
	}
	steps, err := config.LoadStepCatalog(paths.Steps)
	if err != nil {
		return err
	}
	if err := steps.ResolveMessages(strs); err != nil {
		return err
	}
	catalog, err := steps.Build()
	if err != nil {
		return err
	}
	gates, err := config.LoadGateConfig(paths.Gates)
	if err != nil {
		return err
	}
	manifest, err := config.LoadScreenManifest(paths.Screens)
	if err != nil {
		return err
	}

	issues := config.CheckConsistency(steps.Steps, gates, manifest)
	errors := 0
	for _, issue := range issues {
		switch issue.Severity {
		case config.SeverityError:
			errors++
			fmt.Fprintln(out, errStyle.Render("  ✗ "+issue.String()))
		default:
			fmt.Fprintln(out, warnStyle.Render("  ⚠ "+issue.String()))
		}
	}
	if errors > 0 {
		return fmt.Errorf("validation failed with %d error(s)", errors)
	}

	fmt.Fprintln(out, okStyle.Render(fmt.Sprintf("✓ %d steps in %d phases, %d screens, %d warning(s)",
		catalog.Len(), catalog.PhaseCount(), len(manifest.Screens), len(issues))))
	return nil
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
