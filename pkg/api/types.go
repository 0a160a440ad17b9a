package api

// Kind names the concrete record type carried in a list transfer.
type Kind string

const (
	KindChannel Kind = "channel"
	KindGroup   Kind = "group"
)

// Record is implemented by every value that can travel in a channel or
// group list.
type Record interface {
	Kind() Kind
}

// Package is an installed package that owns channels and groups.
type Package struct {
	Name  string `json:"name" yaml:"name" toml:"name"`
	AppID int    `json:"appId" yaml:"appId" toml:"appId"`
}

// Importance levels.
const (
	ImportanceUnspecified = -1000
	ImportanceNone        = 0
	ImportanceMin         = 1
	ImportanceLow         = 2
	ImportanceDefault     = 3
	ImportanceHigh        = 4
	ImportanceMax         = 5
)

const (
	VisibilityNoOverride = -1000

	AllowBubbleDefault = -1
	AllowBubbleOff     = 0
	AllowBubbleOn      = 1

	// MaxTextLength bounds name and description fields.
	MaxTextLength = 1000
	// MaxVibrationLength bounds vibration patterns.
	MaxVibrationLength = 1000

	DefaultChannelID = "miscellaneous"
)
