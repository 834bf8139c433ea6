package tableio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/gyeh/hcpnorm/internal/config"
	"github.com/gyeh/hcpnorm/internal/table"
)

func canonical(t *testing.T) *table.Table {
	t.Helper()
	tb := table.New("HCP_ID", "ACTIVITY_DATE", "YRMO", "ID", "CHANNEL", "ACTION")
	require.NoError(t, tb.Append(table.String("H1"), table.String("2024-03-15"), table.String("2024-03"),
		table.Int(11), table.String("LMMR"), table.String("Viewed")))
	require.NoError(t, tb.Append(table.String("H2"), table.Null(), table.Null(),
		table.Int(12), table.String("LMMR, remote"), table.String("Opened")))
	return tb
}

func TestReadCSV_BOMAndInference(t *testing.T) {
	in := "\xEF\xBB\xBFcustomer_id, product_id,activity_date\nH1,1234,2024-03-15\nH2,,03/16/2024\n"
	tb, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []string{"customer_id", "product_id", "activity_date"}, tb.Columns())
	assert.Equal(t, 2, tb.Len())
	assert.Equal(t, table.KindInt, tb.Get(0, "product_id").Kind())
	assert.True(t, tb.Get(1, "product_id").IsNull())
	assert.Equal(t, "03/16/2024", tb.Get(1, "activity_date").Str())
}

func TestReadCSV_Empty(t *testing.T) {
	tb, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.True(t, tb.Empty())
	assert.Empty(t, tb.Columns())
}

func TestWriteCSV_HeaderNoIndexNullsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, canonical(t)))

	want := "HCP_ID,ACTIVITY_DATE,YRMO,ID,CHANNEL,ACTION\n" +
		"H1,2024-03-15,2024-03,11,LMMR,Viewed\n" +
		"H2,,,12,\"LMMR, remote\",Opened\n"
	assert.Equal(t, want, buf.String())
}

func TestParquetRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteParquet(&buf, canonical(t)))

	data := buf.Bytes()
	tb, err := ReadParquet(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	assert.Equal(t, []string{"HCP_ID", "ACTIVITY_DATE", "YRMO", "ID", "CHANNEL", "ACTION"}, tb.Columns())
	require.Equal(t, 2, tb.Len())
	assert.Equal(t, "11", tb.Get(0, "ID").String())
	assert.Equal(t, "2024-03", tb.Get(0, "YRMO").Str())
	assert.True(t, tb.Get(1, "ACTIVITY_DATE").IsNull())
	assert.Equal(t, "LMMR, remote", tb.Get(1, "CHANNEL").Str())
}

func TestReadExcel_FirstSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"customer_id", "sevc_id", "action"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"H1", "S1", "Viewed"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"H2", "S2", "Clicked"}))

	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)

	tb, err := ReadExcel(&buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"customer_id", "sevc_id", "action"}, tb.Columns())
	require.Equal(t, 2, tb.Len())
	assert.Equal(t, "Clicked", tb.Get(1, "action").Str())
}

func TestStore_LocalWriteCreatesParentsAndReadsBack(t *testing.T) {
	ctx := context.Background()
	store := NewStore(configForTest())
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "nested", "deeper", "vae.csv")
	require.NoError(t, store.Write(ctx, canonical(t), csvPath))
	got, err := store.Read(ctx, csvPath)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Len())
	assert.Equal(t, table.KindInt, got.Get(0, "ID").Kind())

	pqPath := filepath.Join(dir, "out", "vae.parquet")
	require.NoError(t, store.Write(ctx, canonical(t), pqPath))
	got, err = store.Read(ctx, pqPath)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Len())

	entries, err := os.ReadDir(filepath.Join(dir, "nested", "deeper"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestStore_ReadMissingFile(t *testing.T) {
	_, err := NewStore(configForTest()).Read(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.ErrorIs(t, err, ErrRead)
}

func TestStore_WriteFailureIsErrWrite(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "outputs")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	err := NewStore(configForTest()).Write(context.Background(), canonical(t), filepath.Join(blocker, "call.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWrite)
}

type memObjects struct {
	objects map[string][]byte
	types   map[string]string
}

func newMemObjects() *memObjects {
	return &memObjects{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memObjects) Get(_ context.Context, bucket, key string) ([]byte, error) {
	data, ok := m.objects[bucket+"/"+key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return data, nil
}

func (m *memObjects) Put(_ context.Context, bucket, key string, body io.Reader, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.objects[bucket+"/"+key] = data
	m.types[bucket+"/"+key] = contentType
	return nil
}

func TestStore_S3Paths(t *testing.T) {
	ctx := context.Background()
	mem := newMemObjects()
	store := NewStoreWithObjects(mem)

	require.NoError(t, store.Write(ctx, canonical(t), "s3://etl/outputs/call.csv"))
	assert.Equal(t, "text/csv", mem.types["etl/outputs/call.csv"])

	got, err := store.Read(ctx, "s3://etl/outputs/call.csv")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Len())

	_, err = store.Read(ctx, "s3://etl/missing.csv")
	assert.Error(t, err)
}

func TestParseS3URI(t *testing.T) {
	cases := []struct {
		in          string
		bucket, key string
		ok          bool
	}{
		{"s3://bucket/path/to/file.csv", "bucket", "path/to/file.csv", true},
		{"s3://bucket", "", "", false},
		{"s3:///key", "", "", false},
		{"outputs/call.csv", "", "", false},
	}
	for _, c := range cases {
		b, k, ok := ParseS3URI(c.in)
		assert.Equal(t, c.ok, ok, c.in)
		assert.Equal(t, c.bucket, b, c.in)
		assert.Equal(t, c.key, k, c.in)
	}
}

func configForTest() config.S3Config {
	return config.S3Config{Region: "us-east-1"}
}
