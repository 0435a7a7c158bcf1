package game

import (
	"fmt"
	"log"
	"time"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// TutorialProgress 持久化的教学进度
type TutorialProgress struct {
	TutorialCompleted bool      `yaml:"tutorialCompleted"`
	CompletedAt       time.Time `yaml:"completedAt,omitempty"`
}

// ProgressStore 教学完成标记的持久化存储
// 实现 tutorial.CompletionStore
type ProgressStore struct {
	gdataManager *gdata.Manager // 可为 nil（降级模式，只保存在内存中）
	progress     TutorialProgress
	now          func() time.Time
}

// 存储路径常量
const (
	progressObject   = "progress"
	progressProperty = "tutorial"
)

// NewProgressStore 创建进度存储并加载已保存的进度
//
// 参数：
//   - gdataManager: gdata 存储管理器，可为 nil（降级模式）
//
// 返回：
//   - *ProgressStore: 存储实例（加载失败时使用空进度）
func NewProgressStore(gdataManager *gdata.Manager) *ProgressStore {
	ps := &ProgressStore{
		gdataManager: gdataManager,
		now:          time.Now,
	}
	if err := ps.Load(); err != nil {
		log.Printf("[ProgressStore] Warning: Failed to load progress: %v (starting fresh)", err)
	}
	return ps
}

// Load 从 gdata 加载进度
func (ps *ProgressStore) Load() error {
	ps.progress = TutorialProgress{}
	if ps.gdataManager == nil {
		return nil
	}
	if !ps.gdataManager.ObjectPropExists(progressObject, progressProperty) {
		return nil
	}

	data, err := ps.gdataManager.LoadObjectProp(progressObject, progressProperty)
	if err != nil {
		return fmt.Errorf("failed to load progress: %w", err)
	}

	var loaded TutorialProgress
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("failed to unmarshal progress: %w", err)
	}
	ps.progress = loaded
	log.Printf("[ProgressStore] Progress loaded (completed=%v)", loaded.TutorialCompleted)
	return nil
}

// save 写入 gdata，降级模式下直接返回
func (ps *ProgressStore) save() error {
	if ps.gdataManager == nil {
		return nil
	}
	data, err := yaml.Marshal(ps.progress)
	if err != nil {
		return fmt.Errorf("failed to marshal progress: %w", err)
	}
	if err := ps.gdataManager.SaveObjectProp(progressObject, progressProperty, data); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

// IsTutorialCompleted 教学是否已正常完成过
func (ps *ProgressStore) IsTutorialCompleted() bool {
	return ps.progress.TutorialCompleted
}

// MarkTutorialCompleted 记录教学完成并立即保存
// 重复调用保留第一次完成的时间
func (ps *ProgressStore) MarkTutorialCompleted() error {
	if !ps.progress.TutorialCompleted {
		ps.progress.TutorialCompleted = true
		ps.progress.CompletedAt = ps.now().UTC()
	}
	if err := ps.save(); err != nil {
		return err
	}
	log.Printf("[ProgressStore] Tutorial marked completed")
	return nil
}

// Reset 清除完成标记（重新体验教学）
func (ps *ProgressStore) Reset() error {
	ps.progress = TutorialProgress{}
	if err := ps.save(); err != nil {
		return err
	}
	log.Printf("[ProgressStore] Progress reset")
	return nil
}

// Progress 返回当前进度副本
func (ps *ProgressStore) Progress() TutorialProgress {
	return ps.progress
}
