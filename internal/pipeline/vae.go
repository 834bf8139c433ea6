package pipeline

import (
	"github.com/gyeh/hcpnorm/internal/config"
	"github.com/gyeh/hcpnorm/internal/model"
	"github.com/gyeh/hcpnorm/internal/normalize"
	"github.com/gyeh/hcpnorm/internal/table"
)

// ChannelLMMR is the constant channel of every VAE row.
const ChannelLMMR = "LMMR"

const (
	vaeHCP     = "customer_id"
	vaeDate    = "activity_date"
	vaeID      = "sevc_id"
	vaeAction  = "action"
	vaeProduct = "product_id"
)

var vaeRename = map[string]string{
	vaeHCP:    model.ColHCPID,
	vaeDate:   model.ColActivityDate,
	vaeID:     model.ColID,
	vaeAction: model.ColAction,
}

// NormalizeVAE maps LMMR service events onto the canonical schema. Rows
// are ordered by (customer, date, service event, action) so output order
// is deterministic.
func NormalizeVAE(raw *table.Table, f config.Filters) (*table.Table, error) {
	months, err := f.MonthsToRetain()
	if err != nil {
		return nil, err
	}

	want, active := f.Product(vaeProduct)
	t, err := productFilter(raw, want, active, vaeProduct, typedEqual)
	if err != nil {
		return nil, err
	}
	if err := t.Require(vaeDate); err != nil {
		return nil, err
	}

	t, err = t.Map(vaeDate, normalize.DateValue).SortBy(vaeHCP, vaeDate, vaeID, vaeAction)
	if err != nil {
		return nil, err
	}
	t = t.With(model.ColChannel, func(table.Row) table.Value { return table.String(ChannelLMMR) })

	return finish(t.Rename(vaeRename), months)
}
