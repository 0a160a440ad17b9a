package api

import "unicode/utf8"

// Channel is a notification channel owned by a package.
type Channel struct {
	ID                           string  `json:"id" yaml:"id" toml:"id"`
	Name                         string  `json:"name" yaml:"name" toml:"name"`
	Description                  string  `json:"description,omitempty" yaml:"description,omitempty" toml:"description"`
	Importance                   int     `json:"importance" yaml:"importance" toml:"importance"`
	BypassDnd                    bool    `json:"bypassDnd" yaml:"bypassDnd" toml:"bypassDnd"`
	LockscreenVisibility         int     `json:"lockscreenVisibility" yaml:"lockscreenVisibility" toml:"lockscreenVisibility"`
	Sound                        string  `json:"sound,omitempty" yaml:"sound,omitempty" toml:"sound"`
	Lights                       bool    `json:"lights" yaml:"lights" toml:"lights"`
	LightColor                   int     `json:"lightColor" yaml:"lightColor" toml:"lightColor"`
	VibrationPattern             []int64 `json:"vibrationPattern,omitempty" yaml:"vibrationPattern,omitempty" toml:"vibrationPattern"`
	UserVisibleTaskShown         bool    `json:"userVisibleTaskShown" yaml:"userVisibleTaskShown" toml:"userVisibleTaskShown"`
	VibrationEnabled             bool    `json:"vibrationEnabled" yaml:"vibrationEnabled" toml:"vibrationEnabled"`
	ShowBadge                    bool    `json:"showBadge" yaml:"showBadge" toml:"showBadge"`
	Deleted                      bool    `json:"deleted" yaml:"deleted" toml:"deleted"`
	DeletedTimeMs                int64   `json:"deletedTimeMs" yaml:"deletedTimeMs" toml:"deletedTimeMs"`
	Group                        string  `json:"group,omitempty" yaml:"group,omitempty" toml:"group"`
	BlockableSystem              bool    `json:"blockableSystem" yaml:"blockableSystem" toml:"blockableSystem"`
	AllowBubbles                 int     `json:"allowBubbles" yaml:"allowBubbles" toml:"allowBubbles"`
	ImportanceLockedDefaultApp   bool    `json:"importanceLockedDefaultApp" yaml:"importanceLockedDefaultApp" toml:"importanceLockedDefaultApp"`
	OriginalImportance           int     `json:"originalImportance" yaml:"originalImportance" toml:"originalImportance"`
	ParentID                     string  `json:"parentId,omitempty" yaml:"parentId,omitempty" toml:"parentId"`
	ConversationID               string  `json:"conversationId,omitempty" yaml:"conversationId,omitempty" toml:"conversationId"`
	Demoted                      bool    `json:"demoted" yaml:"demoted" toml:"demoted"`
	ImportantConvo               bool    `json:"importantConvo" yaml:"importantConvo" toml:"importantConvo"`
	LastNotificationUpdateTimeMs int64   `json:"lastNotificationUpdateTimeMs" yaml:"lastNotificationUpdateTimeMs" toml:"lastNotificationUpdateTimeMs"`
	UserLockedFields             int     `json:"userLockedFields" yaml:"userLockedFields" toml:"userLockedFields"`
}

func (*Channel) Kind() Kind { return KindChannel }

// NewChannel returns a channel with platform defaults applied.
func NewChannel(id, name string, importance int) *Channel {
	c := &Channel{
		ID:                   trimText(id),
		Name:                 trimText(name),
		Importance:           importance,
		OriginalImportance:   ImportanceUnspecified,
		LockscreenVisibility: VisibilityNoOverride,
		ShowBadge:            true,
		AllowBubbles:         AllowBubbleDefault,
		DeletedTimeMs:        -1,
	}
	return c
}

// SetName sets the user visible name, truncated to MaxTextLength.
func (c *Channel) SetName(name string) { c.Name = trimText(name) }

// SetDescription sets the description, truncated to MaxTextLength.
func (c *Channel) SetDescription(desc string) { c.Description = trimText(desc) }

// SetGroup assigns the channel to a group id.
func (c *Channel) SetGroup(id string) { c.Group = trimText(id) }

// SetVibrationPattern stores a copy of p, truncated to MaxVibrationLength.
func (c *Channel) SetVibrationPattern(p []int64) {
	if len(p) > MaxVibrationLength {
		p = p[:MaxVibrationLength]
	}
	c.VibrationPattern = append([]int64(nil), p...)
}

// SetConversationID marks the channel as a conversation channel of parent.
func (c *Channel) SetConversationID(parent, conversation string) {
	c.ParentID = parent
	c.ConversationID = conversation
}

// IsConversation reports whether the channel belongs to a conversation.
func (c *Channel) IsConversation() bool { return c.ConversationID != "" }

// Normalize applies the text and length limits a freshly decoded or
// imported channel must respect.
func (c *Channel) Normalize() {
	c.ID = trimText(c.ID)
	c.Name = trimText(c.Name)
	c.Description = trimText(c.Description)
	c.Group = trimText(c.Group)
	if len(c.VibrationPattern) > MaxVibrationLength {
		c.VibrationPattern = c.VibrationPattern[:MaxVibrationLength]
	}
}

// ChannelGroup is a named grouping of channels.
type ChannelGroup struct {
	ID               string    `json:"id" yaml:"id" toml:"id"`
	Name             string    `json:"name" yaml:"name" toml:"name"`
	Description      string    `json:"description,omitempty" yaml:"description,omitempty" toml:"description"`
	Blocked          bool      `json:"blocked" yaml:"blocked" toml:"blocked"`
	Channels         []Channel `json:"channels,omitempty" yaml:"channels,omitempty" toml:"channels,omitempty"`
	UserLockedFields int       `json:"userLockedFields" yaml:"userLockedFields" toml:"userLockedFields"`
}

func (*ChannelGroup) Kind() Kind { return KindGroup }

// NewChannelGroup returns a group with id and name trimmed.
func NewChannelGroup(id, name string) *ChannelGroup {
	return &ChannelGroup{ID: trimText(id), Name: trimText(name)}
}

// SetDescription sets the description, truncated to MaxTextLength.
func (g *ChannelGroup) SetDescription(desc string) { g.Description = trimText(desc) }

// Normalize applies text limits to the group and its channels.
func (g *ChannelGroup) Normalize() {
	g.ID = trimText(g.ID)
	g.Name = trimText(g.Name)
	g.Description = trimText(g.Description)
	for i := range g.Channels {
		g.Channels[i].Normalize()
	}
}

func trimText(s string) string {
	if utf8.RuneCountInString(s) <= MaxTextLength {
		return s
	}
	n := 0
	for i := range s {
		if n == MaxTextLength {
			return s[:i]
		}
		n++
	}
	return s
}
