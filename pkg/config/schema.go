package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// stepCatalogSchemaID 步骤目录 Schema 的 $id
const stepCatalogSchemaID = "https://github.com/gonewx/clinicdesk/schemas/steps-v1.json"

// GenerateStepCatalogSchema 由 StepCatalogConfig 结构生成 JSON Schema（Draft 2020-12）
func GenerateStepCatalogSchema() ([]byte, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = false

	s := r.Reflect(&StepCatalogConfig{})
	s.ID = stepCatalogSchemaID
	s.Title = "Clinic front-desk tutorial steps v1"
	s.Description = "Schema for data/tutorial/steps.yaml"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return data, nil
}

// SchemaViolation 单条结构校验错误
type SchemaViolation struct {
	// Path 文档内位置，如 "steps/3/action"
	Path    string
	Message string
}

// SchemaError 结构校验失败（包含全部叶子错误）
type SchemaError struct {
	Violations []SchemaViolation
}

// Error 实现 error 接口
func (e *SchemaError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		path := v.Path
		if path == "" {
			path = "(root)"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", path, v.Message))
	}
	return "schema validation failed: " + strings.Join(parts, "; ")
}

var compiledStepSchema *sjsonschema.Schema

// stepCatalogSchema 编译（并缓存）步骤目录 Schema
func stepCatalogSchema() (*sjsonschema.Schema, error) {
	if compiledStepSchema != nil {
		return compiledStepSchema, nil
	}

	schemaJSON, err := GenerateStepCatalogSchema()
	if err != nil {
		return nil, err
	}
	var schemaDoc any
	if err := json.Unmarshal(schemaJSON, &schemaDoc); err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}

	c := sjsonschema.NewCompiler()
	if err := c.AddResource(stepCatalogSchemaID, schemaDoc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	sch, err := c.Compile(stepCatalogSchemaID)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	compiledStepSchema = sch
	return sch, nil
}

// ValidateStepCatalogDocument 对原始 YAML 文档做结构校验
//
// YAML 先解码为通用值，再经 JSON 往返统一数值类型后交给校验器。
//
// 返回：
//   - error: 校验失败时为 *SchemaError，YAML 语法错误时为普通错误
func ValidateStepCatalogDocument(data []byte) error {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse step catalog YAML: %w", err)
	}
	if raw == nil {
		return &SchemaError{Violations: []SchemaViolation{{Message: "document is empty"}}}
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("convert document: %w", err)
	}
	var doc any
	if err := json.Unmarshal(encoded, &doc); err != nil {
		return fmt.Errorf("convert document: %w", err)
	}

	sch, err := stepCatalogSchema()
	if err != nil {
		return err
	}

	if err := sch.Validate(doc); err != nil {
		ve, ok := err.(*sjsonschema.ValidationError)
		if !ok {
			return err
		}
		var violations []SchemaViolation
		for _, cause := range flattenValidationErrors(ve) {
			violations = append(violations, SchemaViolation{
				Path:    strings.Join(cause.InstanceLocation, "/"),
				Message: fmt.Sprintf("%v", cause.ErrorKind),
			})
		}
		return &SchemaError{Violations: violations}
	}
	return nil
}

// flattenValidationErrors 递归收集所有叶子错误
func flattenValidationErrors(ve *sjsonschema.ValidationError) []*sjsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*sjsonschema.ValidationError{ve}
	}
	var flat []*sjsonschema.ValidationError
	for _, cause := range ve.Causes {
		flat = append(flat, flattenValidationErrors(cause)...)
	}
	return flat
}
