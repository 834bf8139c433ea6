package pipeline

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyeh/hcpnorm/internal/config"
	"github.com/gyeh/hcpnorm/internal/model"
	"github.com/gyeh/hcpnorm/internal/table"
	"github.com/gyeh/hcpnorm/internal/tableio"
)

const canonicalHeader = "HCP_ID,ACTIVITY_DATE,YRMO,ID,CHANNEL,ACTION\n"

func csvTable(t *testing.T, lines ...string) *table.Table {
	t.Helper()
	tb, err := tableio.ReadCSV(strings.NewReader(strings.Join(lines, "\n") + "\n"))
	require.NoError(t, err)
	return tb
}

func render(t *testing.T, tb *table.Table) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, tableio.WriteCSV(&buf, tb))
	return buf.String()
}

func TestNormalizeVAE_ExampleRow(t *testing.T) {
	raw := csvTable(t,
		"customer_id,activity_date,sevc_id,action,product_id",
		"H1,2024-03-15,S1,Viewed,P1",
		"H2,2024-03-16,S2,Viewed,P2",
	)

	out, err := NormalizeVAE(raw, config.Filters{"product_id": "P1"})
	require.NoError(t, err)

	assert.Equal(t, canonicalHeader+"H1,2024-03-15,2024-03,S1,LMMR,Viewed\n", render(t, out))
}

func TestNormalizeVAE_SortsByCustomerDateEventAction(t *testing.T) {
	raw := csvTable(t,
		"customer_id,activity_date,sevc_id,action",
		"H2,2024-03-01,S9,Viewed",
		"H1,03/20/2024,S2,Viewed",
		"H1,2024-03-05,S3,Opened",
		"H1,2024-03-05,S3,Clicked",
	)

	out, err := NormalizeVAE(raw, config.Filters{})
	require.NoError(t, err)

	want := canonicalHeader +
		"H1,2024-03-05,2024-03,S3,LMMR,Clicked\n" +
		"H1,2024-03-05,2024-03,S3,LMMR,Opened\n" +
		"H1,2024-03-20,2024-03,S2,LMMR,Viewed\n" +
		"H2,2024-03-01,2024-03,S9,LMMR,Viewed\n"
	assert.Equal(t, want, render(t, out))
}

func TestNormalizeVAE_ProductFilterIsTyped(t *testing.T) {
	raw := csvTable(t,
		"customer_id,activity_date,sevc_id,action,product_id",
		"H1,2024-03-15,S1,Viewed,1234",
	)

	out, err := NormalizeVAE(raw, config.Filters{"product_id": "1234"})
	require.NoError(t, err)
	assert.True(t, out.Empty(), "string filter must not match an integer column")

	out, err = NormalizeVAE(raw, config.Filters{"product_id": 1234})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Len())
}

func TestNormalizeEvents(t *testing.T) {
	raw := csvTable(t,
		"channel,conference_id,customer_id,product_id,indication_id,action,ACTVY_STRT_DT",
		"Webinar,E1,H1,1234,I1,Attended,2024-02-10",
		",E2,H2,1234,I1,Attended,2024-02-11",
		"Symposium,E3,H3,999,I1,Attended,2024-02-12",
	)

	out, err := NormalizeEvents(raw, config.Filters{"product_id": "1234"})
	require.NoError(t, err)

	assert.Equal(t, canonicalHeader+"H1,2024-02-10,2024-02,E1,Webinar,Attended\n", render(t, out))
	assert.Equal(t, model.CanonicalColumns, out.Columns())
}

func TestNormalizeEvents_NullChannelAlwaysDropped(t *testing.T) {
	raw := csvTable(t,
		"channel,conference_id,customer_id,product_id,indication_id,action,ACTVY_STRT_DT",
		",E2,H2,1234,I1,Attended,2024-02-11",
		"NA,E3,H3,1234,I1,Attended,2024-02-11",
	)

	out, err := NormalizeEvents(raw, config.Filters{})
	require.NoError(t, err)
	assert.True(t, out.Empty())
}

func TestNormalizeCall(t *testing.T) {
	raw := csvTable(t,
		"product_external_id_vod__c,child_account_identifier_vod__c,call_date_vod__c,call2_vod_id,recordtype_name,Action",
		"P1,H1,2024-01-15 09:30:00,C1,Detail,Visit",
		"P1,H2,2023-05-01,C2,Detail,Visit",
		"P2,H3,2024-01-20,C3,Remote,Visit",
		"P1,H4,bogus,C4,Detail,Visit",
	)
	f := config.Filters{"product_external_id_vod__c": "P1"}

	out, err := NormalizeCall(raw, f)
	require.NoError(t, err)
	assert.Equal(t, canonicalHeader+"H1,2024-01-15,2024-01,C1,Detail,Visit\n", render(t, out))

	f["months_to_retain"] = 12
	out, err = NormalizeCall(raw, f)
	require.NoError(t, err)
	assert.Equal(t, canonicalHeader+
		"H1,2024-01-15,2024-01,C1,Detail,Visit\n"+
		"H2,2023-05-01,2023-05,C2,Detail,Visit\n", render(t, out))
}

func TestNormalizeCall_NoFilterNeedsNoProductColumn(t *testing.T) {
	raw := csvTable(t,
		"child_account_identifier_vod__c,call_date_vod__c,call2_vod_id,recordtype_name,Action",
		"H1,2024-01-15,C1,Detail,Visit",
	)
	out, err := NormalizeCall(raw, config.Filters{"product_external_id_vod__c": ""})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Len())
}

func TestNormalize_ConfigErrors(t *testing.T) {
	raw := csvTable(t,
		"customer_id,activity_date,sevc_id,action",
		"H1,2024-03-15,S1,Viewed",
	)
	_, err := NormalizeVAE(raw, config.Filters{"months_to_retain": 0})
	assert.ErrorIs(t, err, config.ErrInvalidMonths)

	_, err = NormalizeCall(raw, config.Filters{})
	assert.Error(t, err, "missing call columns")
}

func TestNormalize_YRMOMatchesActivityDate(t *testing.T) {
	raw := csvTable(t,
		"customer_id,activity_date,sevc_id,action",
		"H1,2024-03-15,S1,Viewed",
		"H1,2024-02-29 23:59:00,S2,Viewed",
		"H1,\"Jan 5, 2024\",S3,Viewed",
	)
	out, err := NormalizeVAE(raw, config.Filters{})
	require.NoError(t, err)

	for _, r := range out.Rows() {
		date := r.Get(model.ColActivityDate).String()
		require.Len(t, date, 10)
		assert.Equal(t, date[:7], r.Get(model.ColYRMO).String())
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	cases := []struct {
		name string
		raw  *table.Table
		fn   Transform
	}{
		{"edetail", edetailFixture(t), NormalizeEdetail},
		{"vae", csvTable(t,
			"customer_id,activity_date,sevc_id,action",
			"H2,2024-03-01,S9,Viewed",
			"H1,2024-03-05,S3,Opened",
		), NormalizeVAE},
	}
	for _, c := range cases {
		first, err := c.fn(c.raw, config.Filters{})
		require.NoError(t, err, c.name)
		second, err := c.fn(c.raw, config.Filters{})
		require.NoError(t, err, c.name)
		assert.Equal(t, render(t, first), render(t, second), c.name)
	}
}

func TestMerge_ConcatenatesInOrder(t *testing.T) {
	a := csvTable(t, strings.TrimSuffix(canonicalHeader, "\n"),
		"H1,2024-03-01,2024-03,E1,Webinar,Attended",
		"H2,2024-03-02,2024-03,E2,Webinar,Attended",
	)
	b := csvTable(t, "HCP_ID,ACTIVITY_DATE,YRMO,ID,CHANNEL,ACTION,EXTRA",
		"H3,2024-03-03,2024-03,S1,LMMR,Viewed,x",
		"H4,2024-03-04,2024-03,S2,LMMR,Viewed,y",
		"H5,2024-03-05,2024-03,S3,LMMR,Viewed,z",
	)

	out := Merge(a, b)
	require.Equal(t, 5, out.Len())
	for i, want := range []string{"H1", "H2", "H3", "H4", "H5"} {
		assert.Equal(t, want, out.Get(i, model.ColHCPID).String())
	}
	assert.True(t, out.Get(0, "EXTRA").IsNull())
	assert.Equal(t, "z", out.Get(4, "EXTRA").String())
	assert.Equal(t, 2, a.Len(), "inputs are not mutated")
}
