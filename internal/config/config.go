package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/allanpk716/name_replacer/internal/domain"
)

// RuleManager 规则配置管理接口
type RuleManager interface {
	LoadRules(filePath string) (*domain.RuleSet, error)
	ParseRules(data []byte) (*domain.RuleSet, error)
	ParseYAMLRules(data []byte) (*domain.RuleSet, error)
	ValidateRules(rules *domain.RuleSet) error
}

// RuleError 规则文件结构错误
type RuleError struct {
	Key  string
	Line int
	Msg  string
}

func (e *RuleError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("规则 %q (第 %d 行): %s", e.Key, e.Line, e.Msg)
	}
	return fmt.Sprintf("规则 %q: %s", e.Key, e.Msg)
}

// ruleManager 规则配置管理器实现
type ruleManager struct {
	logger *zap.Logger
}

// NewRuleManager 创建新的规则配置管理器
func NewRuleManager(logger *zap.Logger) RuleManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ruleManager{logger: logger}
}

// LoadRules 从 JSON 或 YAML 文件加载规则
func (rm *ruleManager) LoadRules(filePath string) (*domain.RuleSet, error) {
	if filePath == "" {
		return nil, fmt.Errorf("规则文件路径不能为空")
	}

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("规则文件不存在: %s", filePath)
	}

	var parse func([]byte) (*domain.RuleSet, error)
	switch ext := strings.ToLower(filepath.Ext(filePath)); ext {
	case ".json":
		parse = rm.ParseRules
	case ".yaml", ".yml":
		parse = rm.ParseYAMLRules
	default:
		return nil, fmt.Errorf("规则文件必须是 JSON 或 YAML 格式，当前文件: %s", ext)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("读取规则文件失败: %w", err)
	}

	rules, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("解析规则文件失败: %w", err)
	}

	if err := rm.ValidateRules(rules); err != nil {
		return nil, fmt.Errorf("规则验证失败: %w", err)
	}

	return rules, nil
}

// ParseRules 解析 JSON 规则内容，保留键的顺序。未识别的顶层键被忽略。
func (rm *ruleManager) ParseRules(data []byte) (*domain.RuleSet, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return domain.NewRuleSet(), nil
	}
	root, err := decodeJSON(data)
	if err != nil {
		return nil, err
	}
	return rm.parseDocument(root)
}

// ParseYAMLRules 解析 YAML 规则内容，结构与 JSON 相同
func (rm *ruleManager) ParseYAMLRules(data []byte) (*domain.RuleSet, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}

	doc := &root
	if doc.Kind == 0 {
		return domain.NewRuleSet(), nil
	}
	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) == 0 {
			return domain.NewRuleSet(), nil
		}
		doc = doc.Content[0]
	}
	return rm.parseDocument(doc)
}

func (rm *ruleManager) parseDocument(doc *yaml.Node) (*domain.RuleSet, error) {
	doc = resolve(doc)
	if doc.Kind != yaml.MappingNode {
		return nil, &RuleError{Key: "", Line: doc.Line, Msg: "顶层必须是映射"}
	}

	rules := domain.NewRuleSet()
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key := doc.Content[i].Value
		value := resolve(doc.Content[i+1])

		if key == domain.KeyHonorifics {
			rules.Honorifics = rm.parseHonorifics(value)
			continue
		}

		kind, ok := domain.CategoryKind(key)
		if !ok {
			rm.logger.Debug("忽略未识别的规则键", zap.String("key", key))
			continue
		}

		switch kind {
		case domain.KindLiteral:
			pairs, err := parseLiterals(key, value)
			if err != nil {
				return nil, err
			}
			rules.Literals[key] = pairs
		case domain.KindName:
			entries, err := parseNames(key, value)
			if err != nil {
				return nil, err
			}
			rules.Names[key] = entries
		}
	}

	return rules, nil
}

// ValidateRules 验证规则：名字片段数量一致、替换模式非空
func (rm *ruleManager) ValidateRules(rules *domain.RuleSet) error {
	if rules == nil {
		return fmt.Errorf("规则不能为空")
	}

	var errs []error
	for _, c := range domain.DefaultCategories() {
		for _, pair := range rules.Literals[c.Key] {
			if pair.Key == "" {
				errs = append(errs, fmt.Errorf("%s: %w", c.Key,
					&domain.InvalidPatternError{Pattern: pair.Key, Reason: "替换模式不能为空"}))
			}
		}
		for _, entry := range rules.Names[c.Key] {
			if _, err := domain.ParseCharacter(entry.Target, entry.Source); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", c.Key, err))
			}
		}
	}
	return errors.Join(errs...)
}

// parseHonorifics 敬称映射格式错误时视为空映射
func (rm *ruleManager) parseHonorifics(node *yaml.Node) []domain.Honorific {
	if node.Kind != yaml.MappingNode {
		if !isNull(node) {
			rm.logger.Warn("honorifics 不是映射，按空映射处理", zap.Int("line", node.Line))
		}
		return nil
	}

	var honorifics []domain.Honorific
	index := make(map[string]int)
	for i := 0; i+1 < len(node.Content); i += 2 {
		suffix := node.Content[i].Value
		value := resolve(node.Content[i+1])
		if value.Kind != yaml.ScalarNode || isNull(value) {
			rm.logger.Warn("忽略格式错误的敬称", zap.String("suffix", suffix), zap.Int("line", value.Line))
			continue
		}
		h := domain.Honorific{Suffix: suffix, Label: value.Value}
		if j, ok := index[suffix]; ok {
			honorifics[j] = h
			continue
		}
		index[suffix] = len(honorifics)
		honorifics = append(honorifics, h)
	}
	return honorifics
}

// parseLiterals 解析字面类别：原文 -> 译文，重复的键保留首次出现的位置、使用最后的值
func parseLiterals(key string, node *yaml.Node) ([]domain.Pair, error) {
	if isNull(node) {
		return []domain.Pair{}, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, &RuleError{Key: key, Line: node.Line, Msg: "必须是映射"}
	}

	pairs := make([]domain.Pair, 0, len(node.Content)/2)
	index := make(map[string]int)
	for i := 0; i+1 < len(node.Content); i += 2 {
		source := node.Content[i].Value
		value := resolve(node.Content[i+1])
		if value.Kind != yaml.ScalarNode || isNull(value) {
			return nil, &RuleError{Key: key, Line: value.Line, Msg: fmt.Sprintf("%q 的值必须是字符串", source)}
		}
		p := domain.Pair{Key: source, Value: value.Value}
		if j, ok := index[source]; ok {
			pairs[j] = p
			continue
		}
		index[source] = len(pairs)
		pairs = append(pairs, p)
	}
	return pairs, nil
}

// parseNames 解析名字类别：译文全名 -> 原文字符串或原文片段数组
func parseNames(key string, node *yaml.Node) ([]domain.NameEntry, error) {
	if isNull(node) {
		return []domain.NameEntry{}, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, &RuleError{Key: key, Line: node.Line, Msg: "必须是映射"}
	}

	entries := make([]domain.NameEntry, 0, len(node.Content)/2)
	index := make(map[string]int)
	for i := 0; i+1 < len(node.Content); i += 2 {
		target := node.Content[i].Value
		value := resolve(node.Content[i+1])

		var source []string
		switch {
		case value.Kind == yaml.ScalarNode && !isNull(value):
			source = []string{value.Value}
		case value.Kind == yaml.SequenceNode:
			for _, item := range value.Content {
				item = resolve(item)
				if item.Kind != yaml.ScalarNode || isNull(item) {
					return nil, &RuleError{Key: key, Line: item.Line, Msg: fmt.Sprintf("%q 的片段必须是字符串", target)}
				}
				source = append(source, item.Value)
			}
		default:
			return nil, &RuleError{Key: key, Line: value.Line, Msg: fmt.Sprintf("%q 的值必须是字符串或字符串数组", target)}
		}

		e := domain.NameEntry{Target: target, Source: source}
		if j, ok := index[target]; ok {
			entries[j] = e
			continue
		}
		index[target] = len(entries)
		entries = append(entries, e)
	}
	return entries, nil
}

func resolve(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.Tag == "!!null"
}
