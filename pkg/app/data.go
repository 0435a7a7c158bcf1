package app

import (
	"fmt"
	"log"

	"github.com/gonewx/clinicdesk/pkg/config"
	"github.com/gonewx/clinicdesk/pkg/game"
	"github.com/gonewx/clinicdesk/pkg/tutorial"
)

// DeskData 启动时加载的全部数据文件
type DeskData struct {
	Steps    *config.StepCatalogConfig
	Catalog  *tutorial.Catalog
	Gates    *tutorial.GateConfig
	Manifest *config.ScreenManifest
	Strings  *game.ClinicStrings
	// Issues 跨文件一致性检查结果（只含警告，错误会导致加载失败）
	Issues []config.Issue
}

// LoadDeskData 加载并交叉校验步骤目录、门控配置、界面清单和文本表
//
// 参数：
//   - paths: 数据文件路径（"data/" 开头时优先读取嵌入资源）
//
// 返回：
//   - *DeskData: 可直接用于创建引擎的数据
//   - error: 任一文件加载失败，或一致性检查发现错误
func LoadDeskData(paths config.DataPaths) (*DeskData, error) {
	strs, err := game.NewClinicStrings(paths.Strings)
	if err != nil {
		return nil, fmt.Errorf("文本表加载失败: %w", err)
	}
	log.Printf("[App] Loaded %d strings from %s", strs.Len(), paths.Strings)

	steps, err := config.LoadStepCatalog(paths.Steps)
	if err != nil {
		return nil, fmt.Errorf("步骤目录加载失败: %w", err)
	}
	if err := steps.ResolveMessages(strs); err != nil {
		return nil, fmt.Errorf("步骤文本解析失败: %w", err)
	}
	catalog, err := steps.Build()
	if err != nil {
		return nil, fmt.Errorf("步骤目录无效: %w", err)
	}

	gates, err := config.LoadGateConfig(paths.Gates)
	if err != nil {
		return nil, fmt.Errorf("门控配置加载失败: %w", err)
	}

	manifest, err := config.LoadScreenManifest(paths.Screens)
	if err != nil {
		return nil, fmt.Errorf("界面清单加载失败: %w", err)
	}

	issues := config.CheckConsistency(steps.Steps, gates, manifest)
	for _, issue := range issues {
		log.Printf("[App] %s", issue)
	}
	for _, issue := range issues {
		if issue.Severity == config.SeverityError {
			return nil, fmt.Errorf("数据文件不一致: %s", issue)
		}
	}

	log.Printf("[App] Loaded %d steps, %d screens", catalog.Len(), len(manifest.Screens))
	return &DeskData{
		Steps:    steps,
		Catalog:  catalog,
		Gates:    gates,
		Manifest: manifest,
		Strings:  strs,
		Issues:   issues,
	}, nil
}

// StartIndex 按配置的起始步骤 ID 求索引，空 ID 对应第一个步骤
func (d *DeskData) StartIndex(stepID string) (int, error) {
	if stepID == "" {
		return 0, nil
	}
	return d.Catalog.IndexOf(stepID)
}
