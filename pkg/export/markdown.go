package export

import (
	"bytes"
	"html"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	apperrors "github.com/paiban/oncall/pkg/errors"
	"github.com/paiban/oncall/pkg/model"
)

// mdRenderer 只启用表格扩展，原始 HTML 不输出
var mdRenderer = goldmark.New(
	goldmark.WithExtensions(extension.Table),
	goldmark.WithRendererOptions(goldmarkHTML.WithXHTML()),
)

// markdownEscaper 转义成员名中的 Markdown 标点
var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
	"|", `\|`,
	"#", `\#`,
	"!", `\!`,
	"&", `\&`,
	"~", `\~`,
)

// MarkdownTable 以 GFM 表格输出值班表，列与 CSV 相同
func MarkdownTable(rows []model.RosterRow) (string, error) {
	if len(rows) == 0 {
		return "", ErrNoRosterData
	}

	var sb strings.Builder
	sb.WriteString("| " + strings.Join(CSVHeader, " | ") + " |\n")
	sb.WriteString("|" + strings.Repeat(" --- |", len(CSVHeader)) + "\n")
	for _, row := range rows {
		cells := Record(row)
		for i, c := range cells {
			cells[i] = markdownEscaper.Replace(c)
		}
		sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return sb.String(), nil
}

// WriteHTML 输出可打印的 HTML 值班表
func WriteHTML(w io.Writer, title string, rows []model.RosterRow) error {
	md, err := MarkdownTable(rows)
	if err != nil {
		return err
	}

	var body bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &body); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "渲染 HTML 失败")
	}

	escaped := html.EscapeString(title)
	var out bytes.Buffer
	out.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	out.WriteString("<title>" + escaped + "</title>\n</head>\n<body>\n")
	out.WriteString("<h1>" + escaped + "</h1>\n")
	out.Write(body.Bytes())
	out.WriteString("</body>\n</html>\n")

	if _, err := w.Write(out.Bytes()); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "写入 HTML 失败")
	}
	return nil
}
