// tutorialctl 引导数据工具：校验数据文件、导出 JSON Schema、列出步骤、脚本回放
package main

import (
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/gonewx/clinicdesk/pkg/config"
)

var (
	stepsPath   string
	gatesPath   string
	screensPath string
	stringsPath string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "tutorialctl",
	Short: "Clinic front-desk tutorial data tool",
	Long:  "tutorialctl validates, lists and replays the clinic front-desk tutorial without the desktop host.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if !verbose {
			log.SetOutput(io.Discard)
		}
	},
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&stepsPath, "steps", config.DefaultStepsPath, "step catalog YAML")
	pf.StringVar(&gatesPath, "gates", config.DefaultGatesPath, "gate exception config YAML")
	pf.StringVar(&screensPath, "screens", config.DefaultScreensPath, "screen manifest YAML")
	pf.StringVar(&stringsPath, "strings", config.DefaultStringsPath, "string table")
	pf.BoolVarP(&verbose, "verbose", "v", false, "print engine logs")
}

// dataPaths 命令行指定的数据文件路径
func dataPaths() config.DataPaths {
	return config.DataPaths{
		Steps:   stepsPath,
		Gates:   gatesPath,
		Screens: screensPath,
		Strings: stringsPath,
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
