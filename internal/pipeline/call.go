package pipeline

import (
	"github.com/gyeh/hcpnorm/internal/config"
	"github.com/gyeh/hcpnorm/internal/model"
	"github.com/gyeh/hcpnorm/internal/normalize"
	"github.com/gyeh/hcpnorm/internal/table"
)

// Raw call-activity columns.
const (
	callProduct = "product_external_id_vod__c"
	callHCP     = "child_account_identifier_vod__c"
	callDate    = "call_date_vod__c"
	callID      = "call2_vod_id"
	callChannel = "recordtype_name"
	callAction  = "Action"
)

var callRename = map[string]string{
	callHCP:     model.ColHCPID,
	callDate:    model.ColActivityDate,
	callID:      model.ColID,
	callChannel: model.ColChannel,
	callAction:  model.ColAction,
}

// NormalizeCall maps raw call activity onto the canonical schema. Channel
// and action pass through verbatim.
func NormalizeCall(raw *table.Table, f config.Filters) (*table.Table, error) {
	months, err := f.MonthsToRetain()
	if err != nil {
		return nil, err
	}

	want, active := f.Product(callProduct)
	t, err := productFilter(raw, want, active, callProduct, typedEqual)
	if err != nil {
		return nil, err
	}

	t, err = t.Select(callHCP, callDate, callID, callChannel, callAction)
	if err != nil {
		return nil, err
	}
	t = t.Map(callDate, normalize.DateValue).Rename(callRename)

	return finish(t, months)
}
