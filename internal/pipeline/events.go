package pipeline

import (
	"github.com/gyeh/hcpnorm/internal/config"
	"github.com/gyeh/hcpnorm/internal/model"
	"github.com/gyeh/hcpnorm/internal/normalize"
	"github.com/gyeh/hcpnorm/internal/table"
)

// Raw event/conference columns.
const (
	eventChannel    = "channel"
	eventID         = "conference_id"
	eventHCP        = "customer_id"
	eventProduct    = "product_id"
	eventIndication = "indication_id"
	eventAction     = "action"
	eventStart      = "ACTVY_STRT_DT"
)

var eventRename = map[string]string{
	eventID:         model.ColID,
	eventHCP:        model.ColHCPID,
	eventProduct:    "APIMS_ID",
	eventIndication: "INDCTN_ID",
	eventChannel:    model.ColChannel,
	eventAction:     model.ColAction,
	eventStart:      model.ColActivityDate,
}

// NormalizeEvents maps raw event attendance onto the canonical schema.
// Rows without a channel are dropped before anything else. The product
// filter compares rendered text, so 1234 in config matches "1234" in data.
func NormalizeEvents(raw *table.Table, f config.Filters) (*table.Table, error) {
	months, err := f.MonthsToRetain()
	if err != nil {
		return nil, err
	}
	if err := raw.Require(eventChannel, eventStart); err != nil {
		return nil, err
	}

	t := raw.Filter(func(r table.Row) bool { return !r.Get(eventChannel).IsNull() })
	t = t.Map(eventStart, normalize.DateValue)

	want, active := f.Product(eventProduct)
	t, err = productFilter(t, want, active, eventProduct, stringEqual)
	if err != nil {
		return nil, err
	}

	return finish(t.Rename(eventRename), months)
}
