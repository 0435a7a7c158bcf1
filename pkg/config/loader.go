package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gonewx/clinicdesk/pkg/embedded"
)

// readDataFile 读取配置文件
//
// "data/" 开头的路径在 embedded 已初始化时从嵌入资源读取，
// 其他情况（命令行工具、测试中的临时文件）从磁盘读取。
func readDataFile(path string) ([]byte, error) {
	clean := strings.TrimPrefix(filepath.ToSlash(path), "./")
	if embedded.IsInitialized() && strings.HasPrefix(clean, "data/") {
		if embedded.Exists(clean) {
			return embedded.ReadFile(clean)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
