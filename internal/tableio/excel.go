package tableio

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/gyeh/hcpnorm/internal/table"
)

// ReadExcel reads the first worksheet of a workbook. The first row is the
// header; cells are read as displayed and then kind-inferred like CSV.
func ReadExcel(r io.Reader) (*table.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return table.New(), nil
	}
	return table.Infer(rows[0], rows[1:])
}
