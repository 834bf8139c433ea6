package model

import (
	"time"

	"github.com/google/uuid"
)

// Canonical column names shared by every normalized output.
const (
	ColHCPID        = "HCP_ID"
	ColActivityDate = "ACTIVITY_DATE"
	ColYRMO         = "YRMO"
	ColID           = "ID"
	ColChannel      = "CHANNEL"
	ColAction       = "ACTION"
)

// CanonicalColumns is the output schema, in write order.
var CanonicalColumns = []string{ColHCPID, ColActivityDate, ColYRMO, ColID, ColChannel, ColAction}

// Canonical actions.
const (
	ActionDelivered = "Delivered"
	ActionOpened    = "Opened"
	ActionClicked   = "Clicked"
)

// ActivityRecord is one canonical row as loaded into hcp.activity.
// Identifiers stay text because their source types vary by system.
type ActivityRecord struct {
	LoadBatchID     uuid.UUID
	SourceRowNumber int64
	SourceRowHash   []byte

	HCPID        *string
	ActivityDate *time.Time
	YRMO         *string
	ActivityID   *string
	Channel      *string
	Action       *string
}

// ActivityColumns returns the COPY column list for hcp.activity, matching
// the order of CopyValues.
func ActivityColumns() []string {
	return []string{
		"load_batch_id",
		"source_row_number",
		"source_row_hash",
		"hcp_id",
		"activity_date",
		"yrmo",
		"activity_id",
		"channel",
		"action",
	}
}

// CopyValues returns the record's values in ActivityColumns order.
func (r *ActivityRecord) CopyValues() []any {
	return []any{
		r.LoadBatchID,
		r.SourceRowNumber,
		r.SourceRowHash,
		r.HCPID,
		r.ActivityDate,
		r.YRMO,
		r.ActivityID,
		r.Channel,
		r.Action,
	}
}
