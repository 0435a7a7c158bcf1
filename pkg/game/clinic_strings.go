package game

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gonewx/clinicdesk/pkg/embedded"
)

// ClinicStrings 界面文本表
// 从 ClinicStrings.txt 加载提示文本，教学步骤通过 messageKey 引用
type ClinicStrings struct {
	strings map[string]string // 键 -> 文本映射
}

// NewClinicStrings 加载文本表
//
// 参数：
//   - filePath: 文本文件路径（通常为 "data/strings/ClinicStrings.txt"）
//
// 返回：
//   - *ClinicStrings: 文本表实例
//   - error: 文件读取或解析失败
//
// 文件格式：
//
//	[KEY]
//	文本内容
//
// "data/" 开头的路径在嵌入资源已初始化时从嵌入资源读取，否则读磁盘。
func NewClinicStrings(filePath string) (*ClinicStrings, error) {
	file, err := openStrings(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open strings file %s: %w", filePath, err)
	}
	defer file.Close()

	cs, err := ParseClinicStrings(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read strings file %s: %w", filePath, err)
	}
	return cs, nil
}

func openStrings(filePath string) (io.ReadCloser, error) {
	clean := strings.TrimPrefix(filepath.ToSlash(filePath), "./")
	if embedded.IsInitialized() && strings.HasPrefix(clean, "data/") && embedded.Exists(clean) {
		return embedded.Open(clean)
	}
	return os.Open(filePath)
}

// ParseClinicStrings 从 Reader 解析文本表
// 值中的 "\n" 转义为换行；以 # 开头的行是注释
func ParseClinicStrings(r io.Reader) (*ClinicStrings, error) {
	cs := &ClinicStrings{
		strings: make(map[string]string),
	}

	scanner := bufio.NewScanner(r)
	var currentKey string
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			currentKey = strings.TrimSpace(trimmed[1 : len(trimmed)-1])
			continue
		}

		if currentKey != "" {
			cs.strings[currentKey] = strings.ReplaceAll(line, `\n`, "\n")
			currentKey = ""
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cs, nil
}

// Lookup 查询文本，键不存在时返回 false
func (cs *ClinicStrings) Lookup(key string) (string, bool) {
	text, ok := cs.strings[key]
	return text, ok
}

// GetString 根据键获取文本
// 键不存在时返回 "[key]"（调试用）
func (cs *ClinicStrings) GetString(key string) string {
	if text, ok := cs.strings[key]; ok {
		return text
	}
	return "[" + key + "]"
}

// Len 已加载的文本条数
func (cs *ClinicStrings) Len() int {
	return len(cs.strings)
}
