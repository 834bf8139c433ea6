package tableio

import (
	"fmt"
	"io"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/gyeh/hcpnorm/internal/parquetread"
	"github.com/gyeh/hcpnorm/internal/table"
)

const readBatchSize = 1024

// columnOrderKey records the writer's column order, since a Parquet group
// stores its fields sorted by name.
const columnOrderKey = "hcpnorm.columns"

const columnOrderSep = "\x1f"

// ReadParquet loads a whole flat Parquet file into a table.
func ReadParquet(r io.ReaderAt, size int64) (*table.Table, error) {
	pr, err := parquetread.New(r, size)
	if err != nil {
		return nil, err
	}
	defer pr.Close()

	t := table.New(pr.Columns()...)
	buf := make([][]table.Value, readBatchSize)
	for {
		n, readErr := pr.Read(buf)
		for i := 0; i < n; i++ {
			if err := t.Append(buf[i]...); err != nil {
				return nil, err
			}
		}
		if readErr == io.EOF || (readErr == nil && n == 0) {
			break
		}
		if readErr != nil {
			return nil, readErr
		}
	}

	if order, ok := pr.Metadata(columnOrderKey); ok && order != "" {
		return t.Select(strings.Split(order, columnOrderSep)...)
	}
	return t, nil
}

// WriteParquet writes t as a Parquet file with one optional string column
// per table column.
func WriteParquet(w io.Writer, t *table.Table) error {
	cols := t.Columns()
	if len(cols) == 0 {
		return fmt.Errorf("parquet output needs at least one column")
	}
	group := parquet.Group{}
	for _, c := range cols {
		group[c] = parquet.Optional(parquet.String())
	}
	schema := parquet.NewSchema("table", group)

	pw := parquet.NewWriter(w, schema,
		parquet.KeyValueMetadata(columnOrderKey, strings.Join(cols, columnOrderSep)))

	leaves := schema.Columns()
	rows := make([]parquet.Row, 0, t.Len())
	for _, r := range t.Rows() {
		row := make(parquet.Row, len(leaves))
		for j, path := range leaves {
			v := r.Get(path[0])
			if v.IsNull() {
				row[j] = parquet.Value{}.Level(0, 0, j)
				continue
			}
			row[j] = parquet.ValueOf(v.String()).Level(0, 1, j)
		}
		rows = append(rows, row)
	}
	if _, err := pw.WriteRows(rows); err != nil {
		pw.Close()
		return fmt.Errorf("write parquet rows: %w", err)
	}
	return pw.Close()
}
