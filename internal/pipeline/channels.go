package pipeline

import "github.com/gyeh/hcpnorm/internal/model"

// Canonical edetail channels.
const (
	ChannelM3MRKun = "EMAIL_M3_MR_KUN"
	ChannelM3Quiz  = "EMAIL_M3_QUIZ"
	ChannelM3MM    = "EMAIL_M3_MM"
	ChannelM3OPD   = "EMAIL_M3_OPD"
	ChannelNMO     = "EDETAIL_NMO"
	ChannelCarenet = "EDETAIL_CARENET"
	ChannelJStream = "EDETAIL_JSTREAM"
	ChannelMedpeer = "EDETAIL_MEDPEER"
)

// edetailChannels maps source-system codes to canonical channels.
// Unmapped codes pass through unchanged.
var edetailChannels = map[string]string{
	"M3":      ChannelM3MRKun,
	"M3-Quiz": ChannelM3Quiz,
	"M3-MM":   ChannelM3MM,
	"NMO":     ChannelNMO,
	"M3-OPD":  ChannelM3OPD,
	"CARENET": ChannelCarenet,
	"JSTREAM": ChannelJStream,
	"Medpeer": ChannelMedpeer,
}

// edetailActions maps raw edetail actions to canonical ones.
var edetailActions = map[string]string{
	"Sent": model.ActionDelivered,
}

// nmoActions applies only to the NMO family.
var nmoActions = map[string]string{
	"Viewed": model.ActionOpened,
}

// signalFamily is a set of channels whose rows collapse to exposure and
// engagement signals.
type signalFamily struct {
	name     string
	channels []string
	// actions are tested in order; each yields at most one row per group.
	actions []string
	// distinct drops repeated output rows.
	distinct bool
}

var (
	ecareFamily = signalFamily{
		name:     "ecare",
		channels: []string{ChannelCarenet, ChannelMedpeer},
		actions:  []string{model.ActionDelivered, model.ActionOpened},
		distinct: true,
	}
	m3Family = signalFamily{
		name:     "m3",
		channels: []string{ChannelM3MRKun, ChannelM3OPD, ChannelM3Quiz, ChannelM3MM},
		actions:  []string{model.ActionDelivered, model.ActionOpened, model.ActionClicked},
	}
)
