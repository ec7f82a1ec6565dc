// Package export encodes a daily price series for download.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/helloworldpark/tickle-stock-info/commons"
	"github.com/helloworldpark/tickle-stock-info/structs"
)

// Download file names.
const (
	CSVFileName   = "stock_data.csv"
	ExcelFileName = "stock_data.xlsx"

	CSVContentType   = "text/csv; charset=utf-8"
	ExcelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	SheetName  = "stock_data"
	dateLayout = "2006-01-02"
)

// Header of both encodings. The first column is the date index.
var Header = []string{"Date", "Open", "High", "Low", "Close", "Adj Close", "Volume"}

var newError = commons.NewTaggedWrapper("Export")

// utf8BOM makes Excel read the CSV as UTF-8.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func record(p structs.StockPrice) []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return []string{
		commons.Unix(p.Timestamp).Format(dateLayout),
		f(p.Open), f(p.High), f(p.Low), f(p.Close), f(p.AdjClose), f(p.Volume),
	}
}

// WriteCSV writes prices as comma separated text with a header row.
func WriteCSV(w io.Writer, prices []structs.StockPrice) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return newError(err, "failed to write BOM")
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return newError(err, "failed to write header")
	}
	for _, p := range prices {
		if err := writer.Write(record(p)); err != nil {
			return newError(err, "failed to write record")
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return newError(err, "")
	}
	return nil
}

// WriteExcel writes prices as a workbook with one sheet.
// Dates are date cells, prices are numbers.
func WriteExcel(w io.Writer, prices []structs.StockPrice) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return newError(err, "")
	}
	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		return newError(err, "")
	}

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return newError(err, "failed to write header")
	}

	for i, p := range prices {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return newError(err, "")
		}
		day := commons.Unix(p.Timestamp)
		row := []interface{}{day, p.Open, p.High, p.Low, p.Close, p.AdjClose, p.Volume}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return newError(err, "failed to write record")
		}
		if err := f.SetCellStyle(SheetName, cell, cell, dateStyle); err != nil {
			return newError(err, "")
		}
	}
	if err := f.SetColWidth(SheetName, "A", "A", 12); err != nil {
		return newError(err, "")
	}

	if _, err := f.WriteTo(w); err != nil {
		return newError(err, "failed to write workbook")
	}
	return nil
}
