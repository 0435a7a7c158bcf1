package main

import (
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/pflag"

	"github.com/gonewx/clinicdesk/pkg/app"
	"github.com/gonewx/clinicdesk/pkg/config"
	"github.com/gonewx/clinicdesk/pkg/embedded"
)

func main() {
	fs := pflag.NewFlagSet("clinicdesk", pflag.ExitOnError)
	config.AppFlags(fs)
	fs.Parse(os.Args[1:])

	cfg, err := config.LoadAppConfig(fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "配置加载失败: %v\n", err)
		os.Exit(1)
	}

	// 初始化嵌入数据（dataFS 在 embed.go 中声明）
	embedded.Init(dataFS)

	deskApp, err := app.NewApp(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化失败: %v\n", err)
		os.Exit(1)
	}

	window := deskApp.Window()
	ebiten.SetWindowSize(window.Width, window.Height)
	ebiten.SetWindowTitle(window.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(deskApp); err != nil {
		log.Fatal(err)
	}
}
