package normalize

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gyeh/hcpnorm/internal/model"
	"github.com/gyeh/hcpnorm/internal/table"
)

// Row rejection reasons for warehouse loads.
var (
	ErrBadActivityDate = errors.New("ACTIVITY_DATE is not a date")
	ErrYRMOMismatch    = errors.New("YRMO does not match ACTIVITY_DATE")
)

// ToActivityRecord converts one canonical row into a load record. A row
// whose YRMO is not the month of its own ACTIVITY_DATE is rejected.
func ToActivityRecord(r table.Row, batchID uuid.UUID, rowNum int64) (*model.ActivityRecord, error) {
	rawDate := r.Get(model.ColActivityDate)
	date := DateValue(rawDate)
	if !rawDate.IsNull() && date.IsNull() {
		return nil, fmt.Errorf("%w: %q", ErrBadActivityDate, rawDate.String())
	}

	rawYRMO := r.Get(model.ColYRMO)
	if want := YRMO(date); want.String() != rawYRMO.String() {
		return nil, fmt.Errorf("%w: %q vs %q", ErrYRMOMismatch, rawYRMO.String(), want.String())
	}

	values := make([]string, len(model.CanonicalColumns))
	for i, c := range model.CanonicalColumns {
		values[i] = r.Get(c).String()
	}

	rec := &model.ActivityRecord{
		LoadBatchID:     batchID,
		SourceRowNumber: rowNum,
		SourceRowHash:   RowHashFromValues(rowNum, values...),

		HCPID:      optText(r.Get(model.ColHCPID)),
		YRMO:       optText(rawYRMO),
		ActivityID: optText(r.Get(model.ColID)),
		Channel:    optText(r.Get(model.ColChannel)),
		Action:     optText(r.Get(model.ColAction)),
	}
	if t, ok := date.TimeValue(); ok {
		rec.ActivityDate = &t
	}
	return rec, nil
}

func optText(v table.Value) *string {
	if v.IsNull() {
		return nil
	}
	s := v.String()
	return &s
}
