package utils

import (
	"strings"
	"testing"

	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

// TestWrapText 测试文本换行功能
func TestWrapText(t *testing.T) {
	font := FallbackFace()

	tests := []struct {
		name      string
		input     string
		maxWidth  float64
		expectMin int // 期望最少的行数
	}{
		{"短文本不换行", "短文本", 1000, 1},
		{"长文本自动换行", "先填写患者姓名和证件号码然后点击确认挂号按钮完成登记", 120, 2},
		{"强制换行", "第一行\n第二行", 1000, 2},
		{"空文本", "", 100, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := WrapText(tt.input, font, tt.maxWidth)
			if len(lines) < tt.expectMin {
				t.Fatalf("期望至少 %d 行，实际得到 %d 行: %q", tt.expectMin, len(lines), lines)
			}
			for i, line := range lines {
				if w, _ := text.Measure(line, font, 0); w > tt.maxWidth && len([]rune(line)) > 1 {
					t.Errorf("第 %d 行 %q 宽度 %.0f 超过 %.0f", i+1, line, w, tt.maxWidth)
				}
			}
			joined := strings.Join(lines, "")
			if want := strings.ReplaceAll(tt.input, "\n", ""); joined != want {
				t.Errorf("换行丢失字符: got %q, want %q", joined, want)
			}
		})
	}
}

// TestWrapTextEdgeCases 测试边界情况
func TestWrapTextEdgeCases(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		font     text.Face
		maxWidth float64
		wantLen  int
	}{
		{"nil font", "测试", nil, 100, 1},
		{"zero maxWidth", "测试", FallbackFace(), 0, 1},
		{"negative maxWidth", "测试", FallbackFace(), -100, 1},
		{"单字超宽", "测试", FallbackFace(), 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := WrapText(tt.input, tt.font, tt.maxWidth)
			if len(lines) != tt.wantLen {
				t.Errorf("期望 %d 行，实际得到 %d 行", tt.wantLen, len(lines))
			}
		})
	}
}

func TestLoadFace_Missing(t *testing.T) {
	if _, err := LoadFace("/nonexistent/font.ttf", 16); err == nil {
		t.Error("Expected error for missing font file")
	}
}
