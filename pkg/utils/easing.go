package utils

// 缓动函数输入进度 t ∈ [0, 1]，返回值同样落在 [0, 1]。
// 调用方负责把 t 夹紧到区间内。

// EaseOutCubic 先快后慢，用于面板滑入和淡入
func EaseOutCubic(t float64) float64 {
	u := 1 - t
	return 1 - u*u*u
}

// EaseInOutCubic 两端慢中间快，用于指示箭头往返浮动
func EaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := -2*t + 2
	return 1 - u*u*u/2
}

// Lerp 在 a 与 b 之间按 t 线性插值
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Clamp01 把进度夹紧到 [0, 1]
func Clamp01(t float64) float64 {
	switch {
	case t < 0:
		return 0
	case t > 1:
		return 1
	}
	return t
}
