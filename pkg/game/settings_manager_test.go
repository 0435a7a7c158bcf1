package game

import (
	"testing"
)

// TestDefaultSettings 测试 DefaultSettings() 返回正确的默认值
func TestDefaultSettings(t *testing.T) {
	settings := DefaultSettings()

	if settings.Fullscreen {
		t.Error("Fullscreen: got true, want false")
	}
	if settings.ReducedMotion {
		t.Error("ReducedMotion: got true, want false")
	}
	if settings.DimOpacity != 0.45 {
		t.Errorf("DimOpacity: got %v, want 0.45", settings.DimOpacity)
	}
}

// TestSettingsLoadSave 测试保存后重新加载
func TestSettingsLoadSave(t *testing.T) {
	m := openTestGdata(t, "test_settings")

	sm := NewSettingsManager(m)
	sm.SetFullscreen(true)
	sm.SetReducedMotion(true)
	sm.SetDimOpacity(0.8)
	if err := sm.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	reloaded := NewSettingsManager(m)
	got := reloaded.GetSettings()
	if !got.Fullscreen || !got.ReducedMotion || got.DimOpacity != 0.8 {
		t.Errorf("Reloaded settings mismatch: %+v", got)
	}
}

// TestSettingsLoad_MissingFields 旧存档缺少的字段保持默认值
func TestSettingsLoad_MissingFields(t *testing.T) {
	m := openTestGdata(t, "test_settings_partial")
	if err := m.SaveObjectProp(settingsObject, settingsProperty, []byte("fullscreen: true\ndimOpacity: 3\n")); err != nil {
		t.Fatalf("SaveObjectProp() error: %v", err)
	}

	got := NewSettingsManager(m).GetSettings()
	if !got.Fullscreen {
		t.Error("Expected fullscreen from saved data")
	}
	if got.DimOpacity != 1.0 {
		t.Errorf("Expected out-of-range opacity clamped to 1.0, got %v", got.DimOpacity)
	}
}

// TestSettingsNilGdata 降级模式
func TestSettingsNilGdata(t *testing.T) {
	sm := NewSettingsManager(nil)
	sm.SetFullscreen(true)
	if err := sm.Save(); err != nil {
		t.Errorf("Save() with nil gdata should not fail: %v", err)
	}
	if err := sm.Load(); err != nil {
		t.Errorf("Load() with nil gdata should not fail: %v", err)
	}
	if sm.GetSettings().Fullscreen {
		t.Error("Load() in degraded mode should reset to defaults")
	}
}

// TestSetDimOpacity_Clamps 遮罩不透明度限制在 0.0 ~ 1.0
func TestSetDimOpacity_Clamps(t *testing.T) {
	sm := NewSettingsManager(nil)
	tests := []struct {
		in, want float64
	}{
		{-0.5, 0.0},
		{0.3, 0.3},
		{1.7, 1.0},
	}
	for _, tt := range tests {
		sm.SetDimOpacity(tt.in)
		if got := sm.GetSettings().DimOpacity; got != tt.want {
			t.Errorf("SetDimOpacity(%v) -> %v, want %v", tt.in, got, tt.want)
		}
	}
}
