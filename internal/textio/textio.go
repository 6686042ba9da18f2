// Package textio 负责纯文本输入输出的编码转换，替换核心只处理已解码的字符串。
package textio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding 文本文件编码
type Encoding string

const (
	UTF8      Encoding = "utf-8"
	ShiftJIS  Encoding = "shift_jis"
	EUCJP     Encoding = "euc-jp"
	ISO2022JP Encoding = "iso-2022-jp"
)

// ParseEncoding 解析编码名称，忽略大小写并接受常见别名
func ParseEncoding(name string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return UTF8, nil
	case "shift_jis", "shift-jis", "sjis", "cp932":
		return ShiftJIS, nil
	case "euc-jp", "eucjp":
		return EUCJP, nil
	case "iso-2022-jp", "jis":
		return ISO2022JP, nil
	default:
		return "", fmt.Errorf("不支持的编码 %q (可用: utf-8, shift_jis, euc-jp, iso-2022-jp)", name)
	}
}

func (e Encoding) codec() encoding.Encoding {
	switch e {
	case ShiftJIS:
		return japanese.ShiftJIS
	case EUCJP:
		return japanese.EUCJP
	case ISO2022JP:
		return japanese.ISO2022JP
	default:
		return unicode.UTF8
	}
}

// Decode 将字节解码为字符串；UTF-8 输入会去掉 BOM
func Decode(data []byte, enc Encoding) (string, error) {
	var decoder transform.Transformer
	if enc == UTF8 || enc == "" {
		decoder = unicode.BOMOverride(unicode.UTF8.NewDecoder())
	} else {
		decoder = enc.codec().NewDecoder()
	}
	out, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return "", fmt.Errorf("按 %s 解码失败: %w", enc, err)
	}
	return string(out), nil
}

// Encode 将字符串编码为目标编码的字节，无法表示的字符会返回错误
func Encode(text string, enc Encoding) ([]byte, error) {
	if enc == UTF8 || enc == "" {
		return []byte(text), nil
	}
	out, _, err := transform.Bytes(enc.codec().NewEncoder(), []byte(text))
	if err != nil {
		return nil, fmt.Errorf("按 %s 编码失败: %w", enc, err)
	}
	return out, nil
}

// ReadFile 读取并解码文本文件
func ReadFile(path string, enc Encoding) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("读取文件失败: %w", err)
	}
	return Decode(data, enc)
}

// WriteFile 编码并写入文本文件，必要时创建目录
func WriteFile(path, text string, enc Encoding) error {
	data, err := Encode(text, enc)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("写入文件失败: %w", err)
	}
	return nil
}
