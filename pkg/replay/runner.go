package replay

import (
	"fmt"
	"log"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/gonewx/clinicdesk/pkg/tutorial"
	"github.com/gonewx/clinicdesk/pkg/utils"
)

// Result 回放结束时的引擎状态
type Result struct {
	// Executed 实际执行的调用数（引导提前结束时小于脚本长度）
	Executed int
	State    tutorial.EngineState
	// Finished 引导是否已结束
	Finished bool
	// Enabled 脚本注册的控件最后一次收到的门控结果
	Enabled map[string]bool
}

// EnabledNames 按名称排序返回 Enabled 中的控件
func (r Result) EnabledNames() []string {
	names := make([]string, 0, len(r.Enabled))
	for name := range r.Enabled {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Observer 每次调用执行前回调（用于打印）
type Observer func(index int, kind string, call Call)

// scriptScreen 脚本界面，closed 调用后视为已销毁
type scriptScreen struct {
	name string
	live bool
}

func (s *scriptScreen) ScreenName() string { return s.name }
func (s *scriptScreen) IsLive() bool       { return s.live }

// scriptControl 脚本控件，只记录门控结果
type scriptControl struct {
	decl    ControlDecl
	enabled bool
}

func (c *scriptControl) LocalSize() (float64, float64) { return c.decl.W, c.decl.H }

func (c *scriptControl) LocalGeoM() ebiten.GeoM {
	var g ebiten.GeoM
	g.Translate(c.decl.X, c.decl.Y)
	return g
}

func (c *scriptControl) ParentNode() utils.Node { return nil }

func (c *scriptControl) SetInputEnabled(enabled bool) { c.enabled = enabled }

// session 一次回放中由脚本创建的界面和控件
type session struct {
	engine   *tutorial.Engine
	screens  map[string]*scriptScreen
	controls map[string]*scriptControl
}

// Run 用脚本驱动引擎
//
// 参数：
//   - engine: 处于 inactive 状态的引擎
//   - script: 回放脚本
//   - observe: 可为 nil
//
// 返回：
//   - Result: 回放结果
//   - error: 引擎无法启动
//
// 引导结束后剩余调用不再执行。
func Run(engine *tutorial.Engine, script *Script, observe Observer) (Result, error) {
	for _, flag := range script.Flags {
		engine.SetFlag(flag, true)
	}
	if err := engine.Start(script.Start); err != nil {
		return Result{}, fmt.Errorf("start tutorial: %w", err)
	}

	s := &session{
		engine:   engine,
		screens:  make(map[string]*scriptScreen),
		controls: make(map[string]*scriptControl),
	}
	var res Result
	for i, call := range script.Calls {
		if engine.State().Phase == tutorial.PhaseFinished {
			log.Printf("[Replay] Tutorial finished, %d calls left unexecuted", len(script.Calls)-i)
			break
		}
		kind, err := call.Kind()
		if err != nil {
			return res, fmt.Errorf("call %d: %w", i, err)
		}
		if observe != nil {
			observe(i, kind, call)
		}
		s.apply(kind, call)
		res.Executed++
	}

	res.State = engine.State()
	res.Finished = res.State.Phase == tutorial.PhaseFinished
	res.Enabled = make(map[string]bool, len(s.controls))
	for name, c := range s.controls {
		res.Enabled[name] = c.enabled
	}
	return res, nil
}

func (s *session) screen(name string) *scriptScreen {
	sc, ok := s.screens[name]
	if !ok || !sc.live {
		sc = &scriptScreen{name: name, live: true}
		s.screens[name] = sc
	}
	return sc
}

func (s *session) apply(kind string, call Call) {
	engine := s.engine
	switch kind {
	case "ready":
		s.screen(call.Ready)
		engine.NotifyScreenReady(call.Ready)
	case "closed":
		// 界面销毁：其控件在注册表中随之失效
		if sc, ok := s.screens[call.Closed]; ok {
			sc.live = false
		}
		engine.NotifyScreenClosed(call.Closed)
	case "event":
		var payload *tutorial.EventPayload
		if call.ErrorCount > 0 {
			payload = &tutorial.EventPayload{ErrorCount: call.ErrorCount}
		}
		engine.ReportEvent(call.Event, payload)
	case "next":
		engine.AcknowledgeInfoStep()
	case "ackFeedback":
		engine.AcknowledgeFeedback(engine.State().FeedbackToken)
	case "pause":
		engine.Pause()
	case "resume":
		engine.Resume()
	case "skip":
		engine.Skip()
	case "forceComplete":
		engine.ForceComplete()
	case "seek":
		if err := engine.Seek(call.Seek); err != nil {
			log.Printf("[Replay] Seek ignored: %v", err)
		}
	case "seekTo":
		if err := engine.SeekTo(call.SeekTo); err != nil {
			log.Printf("[Replay] SeekTo ignored: %v", err)
		}
	case "register":
		c := &scriptControl{decl: *call.Register, enabled: true}
		s.controls[c.decl.Name] = c
		engine.RegisterControl(c.decl.Name, c, s.screen(c.decl.Screen))
	case "unregister":
		delete(s.controls, call.Unregister)
		engine.UnregisterControl(call.Unregister)
	}
}
