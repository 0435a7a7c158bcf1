// Package utils 提供指针输入、文字排版、缓动和存储路径等通用工具
package utils

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// GetPointerState 获取指针的完整状态
// 返回：是否按下、X坐标、Y坐标
func GetPointerState() (pressed bool, x, y int) {
	// 检查触摸
	touchIDs := ebiten.AppendTouchIDs(nil)
	if len(touchIDs) > 0 {
		x, y = ebiten.TouchPosition(touchIDs[0])
		return true, x, y
	}

	// 检查鼠标
	x, y = ebiten.CursorPosition()
	pressed = ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	return pressed, x, y
}

// ============================================================================
// 点击识别 - 按下与释放位置相近才算一次点击
// ============================================================================

// DefaultTapSlop 默认允许的按下到释放的最大位移（像素）
const DefaultTapSlop = 8

// TapDetector 点击识别器
//
// 每帧调用 Feed 传入指针是否按下及位置；按下后移动超过 Slop 的操作视为拖动，
// 释放时不产生点击。与平台输入解耦，便于测试。
type TapDetector struct {
	// Slop 允许的最大位移，0 使用 DefaultTapSlop
	Slop int

	down           bool
	cancelled      bool
	startX, startY int
}

// Feed 输入一帧的指针状态
//
// 参数：
//   - down: 指针当前是否按下
//   - x, y: 指针位置（触摸释放帧可传入上一帧位置）
//
// 返回：
//   - tap: 本帧是否完成一次点击
//   - tx, ty: 点击位置（按下时的位置）
func (d *TapDetector) Feed(down bool, x, y int) (tap bool, tx, ty int) {
	slop := d.Slop
	if slop <= 0 {
		slop = DefaultTapSlop
	}

	switch {
	case down && !d.down:
		d.down = true
		d.cancelled = false
		d.startX, d.startY = x, y
	case down && d.down:
		if abs(x-d.startX) > slop || abs(y-d.startY) > slop {
			d.cancelled = true
		}
	case !down && d.down:
		d.down = false
		if !d.cancelled {
			return true, d.startX, d.startY
		}
	}
	return false, 0, 0
}

// IsDown 当前是否处于按下状态
func (d *TapDetector) IsDown() bool {
	return d.down
}

// Reset 丢弃进行中的按下（界面切换时调用）
func (d *TapDetector) Reset() {
	*d = TapDetector{Slop: d.Slop}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
