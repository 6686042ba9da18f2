package docx

import (
	"fmt"

	"github.com/nguyenthenguyen/docx"
)

// DocxWrapper 包装 nguyenthenguyen/docx 库，读写 word/document.xml 的内容
type DocxWrapper struct {
	reader   *docx.ReplaceDocx
	editable *docx.Docx
	filePath string
	modified bool
}

// OpenDocument 打开DOCX文档
func OpenDocument(filePath string) (*DocxWrapper, error) {
	reader, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("打开文档失败: %w", err)
	}

	return &DocxWrapper{
		reader:   reader,
		editable: reader.Editable(),
		filePath: filePath,
	}, nil
}

// Content 返回正文 XML
func (dw *DocxWrapper) Content() string {
	if dw.editable == nil {
		return ""
	}
	return dw.editable.GetContent()
}

// SetContent 设置正文 XML，内容未变化时不标记修改
func (dw *DocxWrapper) SetContent(content string) {
	if dw.editable == nil || content == dw.editable.GetContent() {
		return
	}
	dw.editable.SetContent(content)
	dw.modified = true
}

// SaveDocument 保存文档
func (dw *DocxWrapper) SaveDocument(outputPath string) error {
	if dw.editable == nil {
		return fmt.Errorf("文档未打开")
	}
	if err := dw.editable.WriteToFile(outputPath); err != nil {
		return fmt.Errorf("保存文档失败: %w", err)
	}
	return nil
}

// IsModified 检查文档是否已修改
func (dw *DocxWrapper) IsModified() bool {
	return dw.modified
}

// FilePath 返回打开的文件路径
func (dw *DocxWrapper) FilePath() string {
	return dw.filePath
}

// Close 关闭文档
func (dw *DocxWrapper) Close() error {
	if dw.reader == nil {
		return nil
	}
	err := dw.reader.Close()
	dw.reader = nil
	dw.editable = nil
	return err
}
