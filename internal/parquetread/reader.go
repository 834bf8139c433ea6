package parquetread

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/gyeh/hcpnorm/internal/table"
)

// Reader streams the rows of a flat Parquet file as typed cells.
type Reader struct {
	file    *os.File
	pf      *parquet.File
	reader  *parquet.Reader
	columns []string
	convert []func(parquet.Value) table.Value
}

// Open opens a Parquet file on disk and returns a streaming Reader.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open parquet file: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat parquet file: %w", err)
	}

	r, err := New(f, stat.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	r.file = f
	return r, nil
}

// New returns a Reader over size bytes of r.
func New(r io.ReaderAt, size int64) (*Reader, error) {
	pf, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	schema := pf.Schema()
	paths := schema.Columns()
	pr := &Reader{
		pf:      pf,
		columns: make([]string, len(paths)),
		convert: make([]func(parquet.Value) table.Value, len(paths)),
	}
	for i, path := range paths {
		leaf, ok := schema.Lookup(path...)
		if !ok {
			return nil, fmt.Errorf("lookup parquet column %s", strings.Join(path, "."))
		}
		pr.columns[i] = strings.Join(path, ".")
		pr.convert[i] = converterFor(leaf.Node.Type())
	}
	pr.reader = parquet.NewReader(pf)
	return pr, nil
}

// Columns returns the leaf column names in file order.
func (r *Reader) Columns() []string { return r.columns }

// NumRows returns the total number of rows in the Parquet file.
func (r *Reader) NumRows() int64 { return r.pf.NumRows() }

// Metadata returns a key/value entry of the file footer.
func (r *Reader) Metadata(key string) (string, bool) { return r.pf.Lookup(key) }

// Read reads up to len(rows) rows as cell slices aligned with Columns.
// Returns the number of rows read and io.EOF when done.
func (r *Reader) Read(rows [][]table.Value) (int, error) {
	buf := make([]parquet.Row, len(rows))
	n, err := r.reader.ReadRows(buf)
	for i := 0; i < n; i++ {
		cells := make([]table.Value, len(r.columns))
		for _, v := range buf[i] {
			c := v.Column()
			if c < 0 || c >= len(cells) || v.IsNull() {
				continue
			}
			cells[c] = r.convert[c](v)
		}
		rows[i] = cells
	}
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("read parquet rows: %w", err)
	}
	return n, err
}

// Close releases all resources.
func (r *Reader) Close() error {
	if err := r.reader.Close(); err != nil {
		if r.file != nil {
			r.file.Close()
		}
		return err
	}
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

func converterFor(typ parquet.Type) func(parquet.Value) table.Value {
	lt := typ.LogicalType()
	switch typ.Kind() {
	case parquet.Boolean:
		return func(v parquet.Value) table.Value { return table.Bool(v.Boolean()) }
	case parquet.Int32:
		if lt != nil && lt.Date != nil {
			return func(v parquet.Value) table.Value {
				return table.Time(time.Unix(int64(v.Int32())*86400, 0).UTC())
			}
		}
		return func(v parquet.Value) table.Value { return table.Int(int64(v.Int32())) }
	case parquet.Int64:
		if lt != nil && lt.Timestamp != nil {
			unit := lt.Timestamp.Unit
			return func(v parquet.Value) table.Value {
				n := v.Int64()
				switch {
				case unit.Millis != nil:
					return table.Time(time.UnixMilli(n).UTC())
				case unit.Nanos != nil:
					return table.Time(time.Unix(0, n).UTC())
				default:
					return table.Time(time.UnixMicro(n).UTC())
				}
			}
		}
		return func(v parquet.Value) table.Value { return table.Int(v.Int64()) }
	case parquet.Float:
		return func(v parquet.Value) table.Value { return table.Float(float64(v.Float())) }
	case parquet.Double:
		return func(v parquet.Value) table.Value { return table.Float(v.Double()) }
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return func(v parquet.Value) table.Value { return table.String(string(v.ByteArray())) }
	default:
		return func(v parquet.Value) table.Value { return table.String(v.String()) }
	}
}
