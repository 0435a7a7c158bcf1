package game

import (
	"testing"
	"time"

	"github.com/quasilyte/gdata/v2"
)

// openTestGdata 在临时 HOME 下打开 gdata，避免污染真实存档
func openTestGdata(t *testing.T, app string) *gdata.Manager {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_DATA_HOME", home)
	t.Setenv("XDG_CONFIG_HOME", home)

	m, err := gdata.Open(gdata.Config{AppName: app})
	if err != nil {
		t.Fatalf("Failed to create gdata manager: %v", err)
	}
	return m
}

func TestProgressStore_Persists(t *testing.T) {
	m := openTestGdata(t, "test_progress")

	ps := NewProgressStore(m)
	if ps.IsTutorialCompleted() {
		t.Fatal("fresh store should not be completed")
	}

	fixed := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	ps.now = func() time.Time { return fixed }
	if err := ps.MarkTutorialCompleted(); err != nil {
		t.Fatalf("MarkTutorialCompleted() error: %v", err)
	}

	// 第二次标记不覆盖完成时间
	ps.now = func() time.Time { return fixed.Add(time.Hour) }
	if err := ps.MarkTutorialCompleted(); err != nil {
		t.Fatalf("MarkTutorialCompleted() error: %v", err)
	}

	reloaded := NewProgressStore(m)
	if !reloaded.IsTutorialCompleted() {
		t.Fatal("completion should survive reload")
	}
	if !reloaded.Progress().CompletedAt.Equal(fixed) {
		t.Errorf("CompletedAt = %v, want %v", reloaded.Progress().CompletedAt, fixed)
	}

	if err := reloaded.Reset(); err != nil {
		t.Fatalf("Reset() error: %v", err)
	}
	if NewProgressStore(m).IsTutorialCompleted() {
		t.Error("Reset() should clear the persisted flag")
	}
}

func TestProgressStore_DegradedMode(t *testing.T) {
	ps := NewProgressStore(nil)
	if ps.IsTutorialCompleted() {
		t.Fatal("degraded store should start incomplete")
	}
	if err := ps.MarkTutorialCompleted(); err != nil {
		t.Fatalf("MarkTutorialCompleted() error in degraded mode: %v", err)
	}
	if !ps.IsTutorialCompleted() {
		t.Error("degraded store should keep the flag in memory")
	}
	if err := ps.Reset(); err != nil || ps.IsTutorialCompleted() {
		t.Errorf("Reset() = %v, completed=%v", err, ps.IsTutorialCompleted())
	}
}

func TestProgressStore_CorruptData(t *testing.T) {
	m := openTestGdata(t, "test_progress_corrupt")
	if err := m.SaveObjectProp(progressObject, progressProperty, []byte("tutorialCompleted: [oops")); err != nil {
		t.Fatalf("SaveObjectProp() error: %v", err)
	}

	ps := NewProgressStore(m)
	if ps.IsTutorialCompleted() {
		t.Error("corrupt data should fall back to an empty progress")
	}
	if err := ps.Load(); err == nil {
		t.Error("Load() should report the unmarshal error")
	}
}
