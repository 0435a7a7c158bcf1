package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// AppConfig 运行时配置
// 来源优先级：命令行参数 > CLINICDESK_* 环境变量 > 配置文件 > 默认值
type AppConfig struct {
	Verbose  bool           `mapstructure:"verbose"`
	FontPath string         `mapstructure:"font_path"`
	Data     DataPaths      `mapstructure:"data"`
	Tutorial TutorialConfig `mapstructure:"tutorial"`
}

// DataPaths 数据文件路径
type DataPaths struct {
	Steps   string `mapstructure:"steps"`
	Gates   string `mapstructure:"gates"`
	Screens string `mapstructure:"screens"`
	Strings string `mapstructure:"strings"`
}

// TutorialConfig 引导相关开关
type TutorialConfig struct {
	// AutoStart 启动后自动开始引导
	AutoStart bool `mapstructure:"auto_start"`
	// Force 即使存档记录已完成也开始引导
	Force bool `mapstructure:"force"`
	// StartStep 起始步骤 ID，空表示第一个步骤
	StartStep string `mapstructure:"start_step"`
	// Flags 启动时设置为 true 的宿主标记（影响 skipWhen）
	Flags []string `mapstructure:"flags"`
	// DebugKeys 启用 PageUp/PageDown 跳转和 F2 强制完成
	DebugKeys bool `mapstructure:"debug_keys"`
}

// setAppDefaults 默认值
func setAppDefaults(v *viper.Viper) {
	v.SetDefault("verbose", false)
	v.SetDefault("font_path", "")
	v.SetDefault("data.steps", DefaultStepsPath)
	v.SetDefault("data.gates", DefaultGatesPath)
	v.SetDefault("data.screens", DefaultScreensPath)
	v.SetDefault("data.strings", DefaultStringsPath)
	v.SetDefault("tutorial.auto_start", true)
	v.SetDefault("tutorial.force", false)
	v.SetDefault("tutorial.start_step", "")
	v.SetDefault("tutorial.flags", []string{})
	v.SetDefault("tutorial.debug_keys", false)
}

// DefaultStringsPath 文本表默认路径
const DefaultStringsPath = "data/strings/ClinicStrings.txt"

// AppFlags 注册桌面端命令行参数
func AppFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (default $HOME/.config/clinicdesk/config.yaml)")
	fs.BoolP("verbose", "v", false, "enable verbose logging")
	fs.String("font", "", "TTF/OTF font used for CJK text")
	fs.String("start-step", "", "step ID to start the tutorial from")
	fs.Bool("force", false, "start the tutorial even if it was completed before")
	fs.StringSlice("flag", nil, "host flag set to true before the tutorial starts (repeatable)")
	fs.Bool("debug-keys", false, "enable PageUp/PageDown step seeking")
}

// flagKeys 命令行参数 → 配置键
var flagKeys = map[string]string{
	"verbose":    "verbose",
	"font":       "font_path",
	"start-step": "tutorial.start_step",
	"force":      "tutorial.force",
	"flag":       "tutorial.flags",
	"debug-keys": "tutorial.debug_keys",
}

// LoadAppConfig 加载运行时配置
//
// 参数：
//   - fs: 已解析的命令行参数，可为 nil（移动端）
//
// 返回：
//   - AppConfig: 合并后的配置
//   - error: 显式指定的配置文件无法读取或配置无法解码
func LoadAppConfig(fs *pflag.FlagSet) (AppConfig, error) {
	v := viper.New()
	setAppDefaults(v)
	v.SetConfigType("yaml")

	explicit := os.Getenv("CLINICDESK_CONFIG")
	if fs != nil {
		if f := fs.Lookup("config"); f != nil && f.Value.String() != "" {
			explicit = f.Value.String()
		}
	}
	if explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "clinicdesk"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("CLINICDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for flagName, key := range flagKeys {
			if f := fs.Lookup(flagName); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return AppConfig{}, fmt.Errorf("bind flag %s: %w", flagName, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// 默认位置没有配置文件是正常情况；显式指定的文件必须存在
		if explicit != "" || !errors.As(err, &notFound) {
			return AppConfig{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c AppConfig
	if err := v.Unmarshal(&c); err != nil {
		return AppConfig{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}
