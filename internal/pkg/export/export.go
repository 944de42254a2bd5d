package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Format - формат файла выгрузки
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// utf8BOM нужен, чтобы Excel открывал CSV в UTF-8
const utf8BOM = "\uFEFF"

const sheetName = "Sheet1"

// ParseFormat разбирает формат; по умолчанию CSV
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported export format %q", value)
}

// ContentType возвращает MIME тип формата
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Table - таблица выгрузки; заголовки совпадают с колонками на экране
type Table struct {
	Headers []string
	Rows    [][]string
}

// Filename возвращает имя файла вида <тип>_<YYYY-MM-DD>.<формат>
func Filename(recordType string, date time.Time, format Format) string {
	return fmt.Sprintf("%s_%s.%s", recordType, date.Format("2006-01-02"), format)
}

// Write пишет таблицу в выбранном формате
func Write(w io.Writer, table Table, format Format) error {
	if format == FormatXLSX {
		return WriteXLSX(w, table)
	}
	return WriteCSV(w, table)
}

// WriteCSV пишет UTF-8 CSV с BOM, каждое поле в кавычках
func WriteCSV(w io.Writer, table Table) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(utf8BOM); err != nil {
		return err
	}
	if err := writeQuotedLine(bw, table.Headers); err != nil {
		return err
	}
	for _, row := range table.Rows {
		if err := writeQuotedLine(bw, row); err != nil {
			return err
		}
	}

	return bw.Flush()
}

func writeQuotedLine(w *bufio.Writer, fields []string) error {
	for i, field := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(`"` + strings.ReplaceAll(field, `"`, `""`) + `"`); err != nil {
			return err
		}
	}
	_, err := w.WriteString("\r\n")
	return err
}

// WriteXLSX пишет таблицу в книгу Excel с одним листом
func WriteXLSX(w io.Writer, table Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := setRow(f, 1, table.Headers); err != nil {
		return err
	}
	for i, row := range table.Rows {
		if err := setRow(f, i+2, row); err != nil {
			return err
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	return f.Write(w)
}

func setRow(f *excelize.File, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return f.SetSheetRow(sheetName, cell, &row)
}
