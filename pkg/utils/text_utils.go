package utils

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/hajimehoshi/bitmapfont/v3"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

// WrapText 将文本按指定宽度自动换行
// 参数:
//   - textStr: 要换行的文本，其中的 "\n" 强制换行
//   - font: 字体
//   - maxWidth: 最大宽度（像素）
//
// 返回:
//   - []string: 换行后的文本数组（每个元素为一行）
//
// 按字符逐个累加测量，支持中文和英文混合文本；
// 单个字符就超宽时独占一行。
func WrapText(textStr string, font text.Face, maxWidth float64) []string {
	if textStr == "" || font == nil || maxWidth <= 0 {
		return []string{textStr}
	}

	var lines []string
	for _, paragraph := range strings.Split(textStr, "\n") {
		lines = append(lines, wrapParagraph(paragraph, font, maxWidth)...)
	}
	return lines
}

// wrapParagraph 对不含换行符的一段文本换行
func wrapParagraph(paragraph string, font text.Face, maxWidth float64) []string {
	if measureTextWidth(paragraph, font) <= maxWidth {
		return []string{paragraph}
	}

	var lines []string
	currentLine := ""
	for rest := paragraph; len(rest) > 0; {
		r, size := utf8.DecodeRuneInString(rest)
		char := string(r)
		rest = rest[size:]

		testLine := currentLine + char
		if measureTextWidth(testLine, font) <= maxWidth {
			currentLine = testLine
			continue
		}

		if currentLine == "" {
			lines = append(lines, char)
			continue
		}
		lines = append(lines, strings.TrimSpace(currentLine))
		currentLine = char
	}

	if currentLine != "" {
		lines = append(lines, strings.TrimSpace(currentLine))
	}
	if len(lines) == 0 {
		lines = []string{paragraph}
	}
	return lines
}

// measureTextWidth 测量文本宽度
func measureTextWidth(textStr string, font text.Face) float64 {
	if textStr == "" || font == nil {
		return 0
	}
	width, _ := text.Measure(textStr, font, 0)
	return width
}

// LoadFace 从 TTF/OTF 文件加载字体
//
// 参数：
//   - path: 字体文件路径
//   - size: 字号（像素）
//
// 返回：
//   - text.Face: 字体
//   - error: 文件读取或解析失败
func LoadFace(path string, size float64) (text.Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font %s: %w", path, err)
	}
	source, err := text.NewGoTextFaceSource(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %s: %w", path, err)
	}
	return &text.GoTextFace{Source: source, Size: size}, nil
}

// FallbackFace 内置的位图字体（含中日韩字符，12px）
// 未配置字体文件或加载失败时使用
func FallbackFace() text.Face {
	return text.NewGoXFace(bitmapfont.FaceEA)
}
