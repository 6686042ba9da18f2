package config

import (
	"strings"

	"github.com/allanpk716/name_replacer/internal/names"
)

// Options 一次替换运行的只读选项
type Options struct {
	// Separators 原文名字片段之间可能出现的分隔符
	Separators []string
	// SingleCharFilter 开启时单字符名字不做无敬称替换
	SingleCharFilter bool
}

// DefaultOptions 默认选项：中点与无分隔，开启单字符过滤
func DefaultOptions() Options {
	return Options{
		Separators:       append([]string(nil), names.DefaultSeparators...),
		SingleCharFilter: true,
	}
}

// ParseSeparators 解析逗号分隔的分隔符列表，空项表示无分隔，如 "・," -> ["・", ""]
func ParseSeparators(raw string) []string {
	return strings.Split(raw, ",")
}
