package pipeline

import (
	"slices"

	"github.com/gyeh/hcpnorm/internal/config"
	"github.com/gyeh/hcpnorm/internal/model"
	"github.com/gyeh/hcpnorm/internal/normalize"
	"github.com/gyeh/hcpnorm/internal/table"
)

// DefaultEdetailProduct is the product kept when filters.product_name is
// absent.
const DefaultEdetailProduct = "EBG"

// Raw edetail columns.
const (
	edetailChannel    = "src_systm_cd"
	edetailID         = "dgtl_dtl_only_id"
	edetailAction     = "action"
	edetailDate       = "activity_date"
	edetailHCP        = "customer_id"
	edetailIndication = "product_indication_id"
	edetailProduct    = "product_name"
)

// Edetail-stage columns beyond the canonical ones.
const (
	colIndication = "INDCTN_ID"
	colProduct    = "PRODUCT_NM"
)

var edetailRename = map[string]string{
	edetailChannel:    model.ColChannel,
	edetailID:         model.ColID,
	edetailAction:     model.ColAction,
	edetailDate:       model.ColActivityDate,
	edetailHCP:        model.ColHCPID,
	edetailIndication: colIndication,
	edetailProduct:    colProduct,
}

// signalKey groups edetail rows into one engagement unit.
var signalKey = []string{model.ColActivityDate, model.ColHCPID, model.ColID, model.ColChannel}

// edetailStageColumns is the shape every family is projected onto before
// they are combined.
var edetailStageColumns = []string{
	model.ColActivityDate, model.ColHCPID, model.ColID, model.ColChannel, model.ColAction, colProduct,
}

// NormalizeEdetail maps raw digital engagement onto the canonical schema.
//
// Rows are split by channel family. Ecare and M3 rows are grouped per
// (date, HCP, detail, channel) and each action whose raw count is exactly
// one yields one row. NMO rows pass through. After the retention window,
// only details with at least one Delivered row survive.
func NormalizeEdetail(raw *table.Table, f config.Filters) (*table.Table, error) {
	months, err := f.MonthsToRetain()
	if err != nil {
		return nil, err
	}
	product, active := f.ProductOr("product_name", DefaultEdetailProduct)

	edetail, err := normalizeEdetailRows(raw, product, active)
	if err != nil {
		return nil, err
	}

	var frames []*table.Table
	for _, fam := range []signalFamily{ecareFamily, m3Family} {
		out, err := buildSignals(edetail, fam, product)
		if err != nil {
			return nil, err
		}
		if !out.Empty() {
			frames = append(frames, out)
		}
	}
	nmo, err := buildNMO(edetail)
	if err != nil {
		return nil, err
	}
	if !nmo.Empty() {
		frames = append(frames, nmo)
	}

	combined := table.New(edetailStageColumns...)
	if len(frames) > 0 {
		combined = table.Concat(frames...)
	}

	combined, err = normalize.AddYRMO(combined, model.ColActivityDate)
	if err != nil {
		return nil, err
	}
	combined = normalize.FilterRetention(combined, months)

	return keepDelivered(combined).Select(model.CanonicalColumns...)
}

// normalizeEdetailRows parses dates to "YYYY-MM-DD", renames the raw
// columns, remaps actions and channels, and applies the product filter.
func normalizeEdetailRows(raw *table.Table, product table.Value, active bool) (*table.Table, error) {
	t, err := raw.Select(edetailChannel, edetailID, edetailAction, edetailDate,
		edetailHCP, edetailIndication, edetailProduct)
	if err != nil {
		return nil, err
	}
	t = t.Map(edetailDate, func(v table.Value) table.Value {
		d, ok := normalize.DateValue(v).TimeValue()
		if !ok {
			return table.Null()
		}
		return table.String(d.Format("2006-01-02"))
	})
	t = t.Rename(edetailRename).
		Replace(model.ColAction, edetailActions).
		Replace(model.ColChannel, edetailChannels)

	return productFilter(t, product, active, colProduct, typedEqual)
}

// buildSignals collapses one channel family into exposure and engagement
// rows. Output holds every row for the first action, then every row for
// the next, with groups in key order inside each action.
func buildSignals(edetail *table.Table, fam signalFamily, product table.Value) (*table.Table, error) {
	rows := edetail.Filter(func(r table.Row) bool {
		return slices.Contains(fam.channels, r.Get(model.ColChannel).Str())
	})
	out := table.New(edetailStageColumns...)
	if rows.Empty() {
		return out, nil
	}

	groups, err := rows.GroupBy(signalKey...)
	if err != nil {
		return nil, err
	}

	productCell := table.Null()
	if product.Truthy() {
		productCell = product
	}
	for _, action := range fam.actions {
		want := table.String(action)
		for _, g := range groups {
			if g.Count(model.ColAction, want, colProduct) != 1 {
				continue
			}
			// Key order is signalKey: date, HCP, ID, channel.
			if err := out.Append(g.Key[0], g.Key[1], g.Key[2], g.Key[3], want, productCell); err != nil {
				return nil, err
			}
		}
	}
	if fam.distinct {
		out = out.Distinct()
	}
	return out, nil
}

func buildNMO(edetail *table.Table) (*table.Table, error) {
	nmo := edetail.Filter(func(r table.Row) bool {
		return r.Get(model.ColChannel).Str() == ChannelNMO
	})
	return nmo.Replace(model.ColAction, nmoActions).Select(edetailStageColumns...)
}

// keepDelivered drops every row whose ID has no Delivered row anywhere in
// the table.
func keepDelivered(t *table.Table) *table.Table {
	delivered := table.Set{}
	want := table.String(model.ActionDelivered)
	for _, r := range t.Rows() {
		if r.Get(model.ColAction).Equal(want) {
			delivered.Add(r.Get(model.ColID))
		}
	}
	return t.Filter(func(r table.Row) bool {
		return delivered.Contains(r.Get(model.ColID))
	})
}
