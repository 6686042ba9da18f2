package cmd

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/allanpk716/name_replacer/internal/config"
	"github.com/allanpk716/name_replacer/internal/domain"
	"github.com/allanpk716/name_replacer/internal/processor"
	"github.com/allanpk716/name_replacer/internal/textio"
	"github.com/allanpk716/name_replacer/pkg/docx"
)

const testRules = `{
	"honorifics": {"さん": "san", "くん": "kun"},
	"basic": {"先輩": "senpai"},
	"names": {"Alex": "アレックス"}
}`

func parseRules(t *testing.T, data string) *domain.RuleSet {
	t.Helper()
	rules, err := config.NewRuleManager(nil).ParseRules([]byte(data))
	require.NoError(t, err)
	return rules
}

func newTestRunner(t *testing.T, rules *domain.RuleSet, args *CommandLineArgs, out io.Writer, logger *zap.Logger) *Runner {
	t.Helper()
	if args.Encoding == "" {
		args.Encoding = "utf-8"
	}
	p := processor.NewProcessor(config.DefaultOptions(), logger)
	r, err := NewRunner(p, rules, args, out, logger)
	require.NoError(t, err)
	return r
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestParseCommandLineArgs(t *testing.T) {
	tests := []struct {
		name    string
		argv    []string
		check   func(t *testing.T, args *CommandLineArgs)
		wantErr bool
	}{
		{
			name: "defaults",
			argv: []string{"-input", "a.txt"},
			check: func(t *testing.T, args *CommandLineArgs) {
				assert.Equal(t, "replacements.json", args.ConfigFile)
				assert.Equal(t, "a.txt", args.InputFile)
				assert.Equal(t, "utf-8", args.Encoding)
				assert.Equal(t, "・,", args.Separators)
				assert.Equal(t, "console", args.LogFormat)
				assert.False(t, args.DryRun)
			},
		},
		{
			name: "positional input and rules",
			argv: []string{"-verbose", "chapter.txt", "rules.yaml"},
			check: func(t *testing.T, args *CommandLineArgs) {
				assert.Equal(t, "chapter.txt", args.InputFile)
				assert.Equal(t, "rules.yaml", args.ConfigFile)
				assert.True(t, args.Verbose)
			},
		},
		{
			name: "all flags",
			argv: []string{"-config", "r.json", "-input-dir", "in", "-output-dir", "out", "-encoding", "sjis",
				"-separators", "＝", "-no-single-char-filter", "-report", "-dry-run", "-log-level", "debug", "-log-format", "json"},
			check: func(t *testing.T, args *CommandLineArgs) {
				assert.Equal(t, "r.json", args.ConfigFile)
				assert.Equal(t, "in", args.InputDir)
				assert.Equal(t, "out", args.OutputDir)
				assert.Equal(t, "sjis", args.Encoding)
				assert.True(t, args.NoSingleCharFilter)
				assert.True(t, args.WriteReport)
				assert.True(t, args.DryRun)
				assert.Equal(t, "debug", args.LogLevel)
				assert.Equal(t, "json", args.LogFormat)
			},
		},
		{
			name: "flags after positional",
			argv: []string{"chapter.txt", "rules.json", "-verbose", "-encoding", "sjis"},
			check: func(t *testing.T, args *CommandLineArgs) {
				assert.Equal(t, "chapter.txt", args.InputFile)
				assert.Equal(t, "rules.json", args.ConfigFile)
				assert.True(t, args.Verbose)
				assert.Equal(t, "sjis", args.Encoding)
			},
		},
		{
			name: "flags between positional",
			argv: []string{"chapter.txt", "-dry-run", "rules.json", "-report"},
			check: func(t *testing.T, args *CommandLineArgs) {
				assert.Equal(t, "chapter.txt", args.InputFile)
				assert.Equal(t, "rules.json", args.ConfigFile)
				assert.True(t, args.DryRun)
				assert.True(t, args.WriteReport)
			},
		},
		{name: "single positional", argv: []string{"chapter.txt"}, wantErr: true},
		{name: "three positional", argv: []string{"a.txt", "r.json", "-verbose", "extra"}, wantErr: true},
		{name: "unknown flag after positional", argv: []string{"a.txt", "r.json", "-bogus"}, wantErr: true},
		{name: "positional with input flag", argv: []string{"-input", "a.txt", "b.txt", "r.json"}, wantErr: true},
		{name: "unknown flag", argv: []string{"-bogus"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, err := ParseCommandLineArgs(tt.argv, io.Discard)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, args)
		})
	}
}

func TestValidateArgs(t *testing.T) {
	tests := []struct {
		name       string
		args       CommandLineArgs
		wantErr    bool
		wantOutput string
		wantOutDir string
	}{
		{
			name:       "single file with default output",
			args:       CommandLineArgs{ConfigFile: "r.json", InputFile: filepath.Join("dir", "ch1.txt")},
			wantOutput: filepath.Join("dir", "ch1-rep.txt"),
		},
		{
			name:       "batch with default output dir",
			args:       CommandLineArgs{ConfigFile: "r.json", InputDir: "novel/"},
			wantOutDir: "novel-rep",
		},
		{name: "no input", args: CommandLineArgs{ConfigFile: "r.json"}, wantErr: true},
		{name: "no config", args: CommandLineArgs{InputFile: "a.txt"}, wantErr: true},
		{name: "both modes", args: CommandLineArgs{ConfigFile: "r.json", InputFile: "a.txt", InputDir: "d"}, wantErr: true},
		{name: "output without input", args: CommandLineArgs{ConfigFile: "r.json", OutputFile: "o.txt"}, wantErr: true},
		{name: "output overwrites input", args: CommandLineArgs{ConfigFile: "r.json", InputFile: "a.txt", OutputFile: "./a.txt"}, wantErr: true},
		{name: "same dirs", args: CommandLineArgs{ConfigFile: "r.json", InputDir: "d", OutputDir: "d/"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := tt.args
			err := ValidateArgs(&args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantOutput != "" {
				assert.Equal(t, tt.wantOutput, args.OutputFile)
			}
			if tt.wantOutDir != "" {
				assert.Equal(t, tt.wantOutDir, args.OutputDir)
			}
		})
	}
}

func TestGenerateOutputFileName(t *testing.T) {
	assert.Equal(t, "chapter1-rep.txt", GenerateOutputFileName("chapter1.txt"))
	assert.Equal(t, "book-rep.docx", GenerateOutputFileName("book.docx"))
	assert.Equal(t, "noext-rep", GenerateOutputFileName("noext"))
}

func TestCommandLineArgs_Options(t *testing.T) {
	args := &CommandLineArgs{Separators: "・,＝", NoSingleCharFilter: true}
	opts := args.Options()

	assert.Equal(t, []string{"・", "＝"}, opts.Separators)
	assert.False(t, opts.SingleCharFilter)
}

func TestShowUsage(t *testing.T) {
	var buf bytes.Buffer
	ShowUsage(&buf)
	assert.Contains(t, buf.String(), AppName)
	assert.Contains(t, buf.String(), "-dry-run")
}

func TestNewRunner_InvalidEncoding(t *testing.T) {
	p := processor.NewProcessor(config.DefaultOptions(), nil)
	_, err := NewRunner(p, domain.NewRuleSet(), &CommandLineArgs{Encoding: "latin-9"}, io.Discard, nil)
	assert.Error(t, err)
}

func TestProcessSingleFile_Text(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "ch1.txt")
	output := filepath.Join(dir, "out", "ch1-rep.txt")
	writeFile(t, input, "アレックスさんと先輩。アレックスくんも。")

	var out bytes.Buffer
	args := &CommandLineArgs{WriteReport: true}
	r := newTestRunner(t, parseRules(t, testRules), args, &out, nil)

	require.NoError(t, r.ProcessSingleFile(context.Background(), input, output))

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "Alex-sanとsenpai。Alex-kunも。", string(data))
	assert.Contains(t, out.String(), "Total Replacements: 3")

	raw, err := os.ReadFile(output + reportSuffix)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, sonic.Unmarshal(raw, &decoded))
	assert.EqualValues(t, 3, decoded["total"])
}

func TestProcessSingleFile_DryRun(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "ch1.txt")
	output := filepath.Join(dir, "ch1-rep.txt")
	writeFile(t, input, "アレックスさん")

	var out bytes.Buffer
	r := newTestRunner(t, parseRules(t, testRules), &CommandLineArgs{DryRun: true, WriteReport: true, Verbose: true}, &out, nil)

	require.NoError(t, r.ProcessSingleFile(context.Background(), input, output))

	assert.NoFileExists(t, output)
	assert.NoFileExists(t, output+reportSuffix)
	assert.Contains(t, out.String(), "Alex :1 (san-1)")
}

func TestProcessSingleFile_ShiftJIS(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "sjis.txt")
	output := filepath.Join(dir, "sjis-rep.txt")
	require.NoError(t, textio.WriteFile(input, "アレックスさん", textio.ShiftJIS))

	r := newTestRunner(t, parseRules(t, testRules), &CommandLineArgs{Encoding: "shift_jis"}, io.Discard, nil)
	require.NoError(t, r.ProcessSingleFile(context.Background(), input, output))

	text, err := textio.ReadFile(output, textio.ShiftJIS)
	require.NoError(t, err)
	assert.Equal(t, "Alex-san", text)
}

func TestProcessSingleFile_MismatchWritesNothing(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "ch1.txt")
	output := filepath.Join(dir, "ch1-rep.txt")
	writeFile(t, input, "アレックス")

	rules := parseRules(t, `{"names": {"Alex Bianca": "アレックス"}}`)
	r := newTestRunner(t, rules, &CommandLineArgs{WriteReport: true}, io.Discard, nil)

	err := r.ProcessSingleFile(context.Background(), input, output)
	require.Error(t, err)

	var mismatch *domain.ConfigMismatchError
	assert.ErrorAs(t, err, &mismatch)
	assert.NoFileExists(t, output)
	assert.NoFileExists(t, output+reportSuffix)
}

func TestProcessSingleFile_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newTestRunner(t, domain.NewRuleSet(), &CommandLineArgs{}, io.Discard, nil)
	assert.ErrorIs(t, r.ProcessSingleFile(ctx, "a.txt", "b.txt"), context.Canceled)
}

func TestProcessSingleFile_LogsLeftoverHonorifics(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "ch1.txt")
	writeFile(t, input, "アレックスさんとビアンカさん")

	core, logs := observer.New(zapcore.DebugLevel)
	r := newTestRunner(t, parseRules(t, testRules), &CommandLineArgs{}, io.Discard, zap.New(core))

	require.NoError(t, r.ProcessSingleFile(context.Background(), input, filepath.Join(dir, "out.txt")))

	leftover := logs.FilterMessage("文本中仍有未处理的敬称").All()
	require.Len(t, leftover, 1)
	assert.Equal(t, "さん", leftover[0].ContextMap()["suffix"])
	assert.EqualValues(t, 1, leftover[0].ContextMap()["count"])
}

// createDocx 创建只有一个段落的最小docx文档
func createDocx(t *testing.T, path, text string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()

	zw := zip.NewWriter(file)
	files := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`,
		"_rels/.rels": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
</Relationships>`,
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>` +
			text + `</w:t></w:r></w:p></w:body></w:document>`,
	}
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func TestProcessSingleFile_Docx(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "book.docx")
	output := filepath.Join(dir, "out", "book-rep.docx")
	createDocx(t, input, "アレックスさんと先輩")

	var out bytes.Buffer
	r := newTestRunner(t, parseRules(t, testRules), &CommandLineArgs{}, &out, nil)
	require.NoError(t, r.ProcessSingleFile(context.Background(), input, output))

	doc, err := docx.OpenDocument(output)
	require.NoError(t, err)
	defer doc.Close()
	assert.Contains(t, doc.Content(), "Alex-sanとsenpai")
	assert.Contains(t, out.String(), "Total Replacements: 2")
}

func TestFindInputFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "x")
	writeFile(t, filepath.Join(dir, "sub", "b.TXT"), "x")
	writeFile(t, filepath.Join(dir, "~$c.txt"), "x")
	writeFile(t, filepath.Join(dir, "notes.md"), "x")
	createDocx(t, filepath.Join(dir, "sub", "d.docx"), "x")

	files, err := FindInputFiles(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "sub", "b.TXT"),
		filepath.Join(dir, "sub", "d.docx"),
	}, files)
}

func TestProcessBatchFiles(t *testing.T) {
	inputDir := filepath.Join(t.TempDir(), "novel")
	outputDir := inputDir + "-rep"
	writeFile(t, filepath.Join(inputDir, "ch1.txt"), "アレックスさん")
	writeFile(t, filepath.Join(inputDir, "part2", "ch2.txt"), "先輩")

	var out bytes.Buffer
	r := newTestRunner(t, parseRules(t, testRules), &CommandLineArgs{}, &out, nil)
	require.NoError(t, r.ProcessBatchFiles(context.Background(), inputDir, outputDir))

	data, err := os.ReadFile(filepath.Join(outputDir, "ch1.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Alex-san", string(data))

	data, err = os.ReadFile(filepath.Join(outputDir, "part2", "ch2.txt"))
	require.NoError(t, err)
	assert.Equal(t, "senpai", string(data))
}

func TestProcessBatchFiles_ContinuesAfterFailure(t *testing.T) {
	inputDir := filepath.Join(t.TempDir(), "novel")
	outputDir := inputDir + "-rep"
	writeFile(t, filepath.Join(inputDir, "a.txt"), "先輩")
	writeFile(t, filepath.Join(inputDir, "b.docx"), "not a zip")

	r := newTestRunner(t, parseRules(t, testRules), &CommandLineArgs{}, io.Discard, nil)
	err := r.ProcessBatchFiles(context.Background(), inputDir, outputDir)
	require.Error(t, err)

	assert.FileExists(t, filepath.Join(outputDir, "a.txt"))
	assert.NoFileExists(t, filepath.Join(outputDir, "b.docx"))
}

func TestProcessBatchFiles_Empty(t *testing.T) {
	r := newTestRunner(t, domain.NewRuleSet(), &CommandLineArgs{}, io.Discard, nil)
	assert.Error(t, r.ProcessBatchFiles(context.Background(), t.TempDir(), t.TempDir()))
}

func TestExecuteProcessing_SingleFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "ch1.txt")
	writeFile(t, input, "先輩")

	args := &CommandLineArgs{ConfigFile: "unused.json", InputFile: input, Encoding: "utf-8"}
	require.NoError(t, ValidateArgs(args))

	r := newTestRunner(t, parseRules(t, testRules), args, io.Discard, nil)
	require.NoError(t, ExecuteProcessing(context.Background(), r, args))

	data, err := os.ReadFile(filepath.Join(dir, "ch1-rep.txt"))
	require.NoError(t, err)
	assert.Equal(t, "senpai", string(data))
}

func TestProcessSingleFile_DocxWarnsSplitPatterns(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "split.docx")
	createDocx(t, input, `アレッ</w:t></w:r><w:r><w:t>クスさんと先輩`)

	core, logs := observer.New(zapcore.WarnLevel)
	r := newTestRunner(t, parseRules(t, testRules), &CommandLineArgs{DryRun: true}, io.Discard, zap.New(core))
	require.NoError(t, r.ProcessSingleFile(context.Background(), input, filepath.Join(dir, "out.docx")))

	warnings := logs.FilterMessage("原文被拆分到多个文本节点，未能替换").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "アレックス", warnings[0].ContextMap()["pattern"])
}

func TestProcessSingleFile_DocxWithoutMatches(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "plain.docx")
	output := filepath.Join(dir, "plain-rep.docx")
	createDocx(t, input, "無関係な文")

	core, logs := observer.New(zapcore.DebugLevel)
	r := newTestRunner(t, parseRules(t, testRules), &CommandLineArgs{}, io.Discard, zap.New(core))
	require.NoError(t, r.ProcessSingleFile(context.Background(), input, output))

	unchanged := logs.FilterMessage("文档中没有发生替换").All()
	require.Len(t, unchanged, 1)
	assert.Equal(t, input, unchanged[0].ContextMap()["input"])
	assert.FileExists(t, output)
}

func TestRulePatterns(t *testing.T) {
	rules := parseRules(t, `{
	"cleaning-up": {"x": "y"},
	"basic": {"先輩": "senpai", "": "ignored"},
	"full-names": {"Alex Bianca": ["アレックス", "ビアンカ"]},
	"names": {"Alex": "アレックス"}
}`)
	assert.Equal(t, []string{"先輩", "アレックス", "ビアンカ", "x"}, rulePatterns(rules))
}
