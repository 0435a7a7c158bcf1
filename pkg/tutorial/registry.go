package tutorial

import (
	"image"
	"log"
	"sort"

	"github.com/gonewx/clinicdesk/pkg/utils"
)

// Screen 业务界面（对引擎而言只有名字和是否存活）
type Screen interface {
	// ScreenName 界面名称，与 StepDescriptor.Screen 对应
	ScreenName() string
	// IsLive 界面是否仍然存在；界面销毁后必须返回 false
	IsLive() bool
}

// Control 可被教学步骤指向的交互控件
// 控件的生命周期归所属界面管理，注册表只持有非拥有引用
type Control interface {
	utils.Node
	// SetInputEnabled 启用/禁用输入
	SetInputEnabled(enabled bool)
}

// registeredControl 注册表条目
type registeredControl struct {
	control Control
	owner   Screen
}

// live 条目是否有效（所属界面仍存活）
func (rc registeredControl) live() bool {
	return rc.owner == nil || rc.owner.IsLive()
}

// ControlRegistry 逻辑名称 → 当前渲染的控件
//
// 多个界面各自注册/注销控件，引擎读取。
// 界面被销毁后其控件条目不会主动移除，因此每次访问都要检查存活性，
// 失效的条目在访问时惰性清除。
type ControlRegistry struct {
	entries map[string]registeredControl
}

// NewControlRegistry 创建空注册表
func NewControlRegistry() *ControlRegistry {
	return &ControlRegistry{
		entries: make(map[string]registeredControl),
	}
}

// Register 注册（或覆盖）控件
//
// 参数：
//   - name: 控件逻辑名称
//   - ctrl: 控件
//   - owner: 所属界面，可为 nil（视为永久存活）
func (r *ControlRegistry) Register(name string, ctrl Control, owner Screen) {
	if name == "" || ctrl == nil {
		log.Printf("[ControlRegistry] Ignoring invalid registration (name=%q, nil control=%v)", name, ctrl == nil)
		return
	}
	r.entries[name] = registeredControl{control: ctrl, owner: owner}
}

// Unregister 显式移除控件
// 返回是否确实移除了条目
func (r *ControlRegistry) Unregister(name string) bool {
	if _, ok := r.entries[name]; !ok {
		return false
	}
	delete(r.entries, name)
	return true
}

// Resolve 查找存活的控件
// 失效条目会被清除并返回 false
func (r *ControlRegistry) Resolve(name string) (Control, bool) {
	entry, ok := r.entries[name]
	if !ok {
		return nil, false
	}
	if !entry.live() {
		log.Printf("[ControlRegistry] Purging stale control %q", name)
		delete(r.entries, name)
		return nil, false
	}
	return entry.control, true
}

// BoundsOf 计算控件的世界坐标包围盒，仅用于放置指示箭头
func (r *ControlRegistry) BoundsOf(name string) (image.Rectangle, bool) {
	ctrl, ok := r.Resolve(name)
	if !ok {
		return image.Rectangle{}, false
	}
	return utils.WorldBounds(ctrl)
}

// OwnerOf 返回控件所属界面
func (r *ControlRegistry) OwnerOf(name string) (Screen, bool) {
	if _, ok := r.Resolve(name); !ok {
		return nil, false
	}
	return r.entries[name].owner, true
}

// Names 返回所有存活控件名（已排序），同时清除失效条目
func (r *ControlRegistry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name, entry := range r.entries {
		if !entry.live() {
			delete(r.entries, name)
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Each 按名称顺序遍历存活控件
func (r *ControlRegistry) Each(fn func(name string, ctrl Control)) {
	for _, name := range r.Names() {
		fn(name, r.entries[name].control)
	}
}

// Len 存活控件数量
func (r *ControlRegistry) Len() int {
	return len(r.Names())
}

// Clear 清空注册表
func (r *ControlRegistry) Clear() {
	r.entries = make(map[string]registeredControl)
}
