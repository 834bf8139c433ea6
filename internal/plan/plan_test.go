package plan

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyeh/hcpnorm/internal/config"
	"github.com/gyeh/hcpnorm/internal/tableio"
)

const canonicalCSV = `HCP_ID,ACTIVITY_DATE,YRMO,ID,CHANNEL,ACTION
H1,2024-01-05,2024-01,10,LMMR,Viewed
H2,2024-03-09,2024-03,11,CARENET,Opened
H3,,,S1,CARENET,Delivered
`

func TestInspect_CanonicalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hcp_promotion.csv")
	require.NoError(t, os.WriteFile(path, []byte(canonicalCSV), 0644))

	r, err := Inspect(context.Background(), tableio.NewStore(config.S3Config{}), path)
	require.NoError(t, err)

	assert.Equal(t, 3, r.Rows)
	assert.Len(t, r.SHA256, 64)
	assert.EqualValues(t, len(canonicalCSV), r.Size)
	assert.True(t, r.Canonical)
	assert.Equal(t, "2024-01", r.MinYRMO)
	assert.Equal(t, "2024-03", r.MaxYRMO)
	assert.Equal(t, map[string]int{"LMMR": 1, "CARENET": 2}, r.Channels)

	byName := map[string]ColumnStats{}
	for _, c := range r.Columns {
		byName[c.Name] = c
	}
	assert.Equal(t, 1, byName["ACTIVITY_DATE"].Nulls)
	assert.Equal(t, "string", byName["ID"].Kind)
	assert.Equal(t, "string", byName["HCP_ID"].Kind)

	var buf bytes.Buffer
	r.Print(&buf)
	assert.Contains(t, buf.String(), "YRMO range: 2024-01 .. 2024-03")
	assert.Contains(t, buf.String(), "Canonical schema: OK")
}

func TestInspect_RawFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vae.csv")
	require.NoError(t, os.WriteFile(path, []byte("customer_id,product_id\nH1,1234\nH2,\n"), 0644))

	r, err := Inspect(context.Background(), tableio.NewStore(config.S3Config{}), path)
	require.NoError(t, err)
	assert.False(t, r.Canonical)
	assert.Empty(t, r.MaxYRMO)
	assert.Nil(t, r.Channels)
	assert.Equal(t, ColumnStats{Name: "product_id", Kind: "int", Nulls: 1}, r.Columns[1])
}

func TestInspect_MissingFile(t *testing.T) {
	_, err := Inspect(context.Background(), tableio.NewStore(config.S3Config{}), "/nonexistent/x.csv")
	require.Error(t, err)
}
