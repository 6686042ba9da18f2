package domain

import "fmt"

// ConfigMismatchError 名字的原文片段数与译文片段数不一致，整个运行终止
type ConfigMismatchError struct {
	Source          string
	Target          string
	SourceFragments int
	TargetFragments int
}

func (e *ConfigMismatchError) Error() string {
	return fmt.Sprintf("名字片段数量不匹配: %q (%d) 与 %q (%d)",
		e.Source, e.SourceFragments, e.Target, e.TargetFragments)
}

// InvalidPatternError 替换模式为空或无效
type InvalidPatternError struct {
	Pattern string
	Reason  string
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("无效的替换模式 %q: %s", e.Pattern, e.Reason)
}
