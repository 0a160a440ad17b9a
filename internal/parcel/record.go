package parcel

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/nihilian/ncheditor/pkg/api"
)

// Channel field numbers. Never renumber.
const (
	chID protowire.Number = iota + 1
	chName
	chDescription
	chImportance
	chBypassDnd
	chLockscreenVisibility
	chSound
	chLights
	chLightColor
	chVibrationPattern
	chUserVisibleTaskShown
	chVibrationEnabled
	chShowBadge
	chDeleted
	chDeletedTimeMs
	chGroup
	chBlockableSystem
	chAllowBubbles
	chImportanceLockedDefaultApp
	chOriginalImportance
	chParentID
	chConversationID
	chDemoted
	chImportantConvo
	chLastNotificationUpdateTimeMs
	chUserLockedFields
)

// Group field numbers.
const (
	grID protowire.Number = iota + 1
	grName
	grDescription
	grBlocked
	grChannels
	grUserLockedFields
)

type encoder struct{ b []byte }

func (e *encoder) str(num protowire.Number, s string) {
	if s == "" {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
	e.b = protowire.AppendString(e.b, s)
}

// Integers are zigzag encoded since several defaults are negative.
func (e *encoder) sint(num protowire.Number, v int64) {
	if v == 0 {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.VarintType)
	e.b = protowire.AppendVarint(e.b, protowire.EncodeZigZag(v))
}

// Booleans are always written so that a true default survives a false value.
func (e *encoder) boolean(num protowire.Number, v bool) {
	e.b = protowire.AppendTag(e.b, num, protowire.VarintType)
	e.b = protowire.AppendVarint(e.b, protowire.EncodeBool(v))
}

func (e *encoder) packed(num protowire.Number, vs []int64) {
	if len(vs) == 0 {
		return
	}
	var p []byte
	for _, v := range vs {
		p = protowire.AppendVarint(p, protowire.EncodeZigZag(v))
	}
	e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
	e.b = protowire.AppendBytes(e.b, p)
}

func (e *encoder) message(num protowire.Number, m []byte) {
	e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
	e.b = protowire.AppendBytes(e.b, m)
}

// MarshalChannel encodes c as a protobuf message.
func MarshalChannel(c *api.Channel) []byte {
	e := &encoder{}
	e.str(chID, c.ID)
	e.str(chName, c.Name)
	e.str(chDescription, c.Description)
	e.sint(chImportance, int64(c.Importance))
	e.boolean(chBypassDnd, c.BypassDnd)
	e.sint(chLockscreenVisibility, int64(c.LockscreenVisibility))
	e.str(chSound, c.Sound)
	e.boolean(chLights, c.Lights)
	e.sint(chLightColor, int64(c.LightColor))
	e.packed(chVibrationPattern, c.VibrationPattern)
	e.boolean(chUserVisibleTaskShown, c.UserVisibleTaskShown)
	e.boolean(chVibrationEnabled, c.VibrationEnabled)
	e.boolean(chShowBadge, c.ShowBadge)
	e.boolean(chDeleted, c.Deleted)
	e.sint(chDeletedTimeMs, c.DeletedTimeMs)
	e.str(chGroup, c.Group)
	e.boolean(chBlockableSystem, c.BlockableSystem)
	e.sint(chAllowBubbles, int64(c.AllowBubbles))
	e.boolean(chImportanceLockedDefaultApp, c.ImportanceLockedDefaultApp)
	e.sint(chOriginalImportance, int64(c.OriginalImportance))
	e.str(chParentID, c.ParentID)
	e.str(chConversationID, c.ConversationID)
	e.boolean(chDemoted, c.Demoted)
	e.boolean(chImportantConvo, c.ImportantConvo)
	e.sint(chLastNotificationUpdateTimeMs, c.LastNotificationUpdateTimeMs)
	e.sint(chUserLockedFields, int64(c.UserLockedFields))
	return e.b
}

// UnmarshalChannel decodes a message produced by MarshalChannel. Text and
// vibration limits are reapplied.
func UnmarshalChannel(b []byte) (*api.Channel, error) {
	c := &api.Channel{}
	err := walk(b, func(num protowire.Number, typ protowire.Type, v []byte) (int, error) {
		switch num {
		case chID, chName, chDescription, chSound, chGroup, chParentID, chConversationID:
			if typ != protowire.BytesType {
				return 0, wrongType(num)
			}
			s, n := protowire.ConsumeString(v)
			switch num {
			case chID:
				c.ID = s
			case chName:
				c.Name = s
			case chDescription:
				c.Description = s
			case chSound:
				c.Sound = s
			case chGroup:
				c.Group = s
			case chParentID:
				c.ParentID = s
			case chConversationID:
				c.ConversationID = s
			}
			return n, nil
		case chVibrationPattern:
			if typ != protowire.BytesType {
				return 0, wrongType(num)
			}
			p, n := protowire.ConsumeBytes(v)
			if n < 0 {
				return n, nil
			}
			for len(p) > 0 {
				x, m := protowire.ConsumeVarint(p)
				if m < 0 {
					return m, nil
				}
				c.VibrationPattern = append(c.VibrationPattern, protowire.DecodeZigZag(x))
				p = p[m:]
			}
			return n, nil
		}
		if typ != protowire.VarintType {
			return skip, nil
		}
		x, n := protowire.ConsumeVarint(v)
		if n < 0 {
			return n, nil
		}
		i := protowire.DecodeZigZag(x)
		bv := protowire.DecodeBool(x)
		switch num {
		case chImportance:
			c.Importance = int(i)
		case chBypassDnd:
			c.BypassDnd = bv
		case chLockscreenVisibility:
			c.LockscreenVisibility = int(i)
		case chLights:
			c.Lights = bv
		case chLightColor:
			c.LightColor = int(i)
		case chUserVisibleTaskShown:
			c.UserVisibleTaskShown = bv
		case chVibrationEnabled:
			c.VibrationEnabled = bv
		case chShowBadge:
			c.ShowBadge = bv
		case chDeleted:
			c.Deleted = bv
		case chDeletedTimeMs:
			c.DeletedTimeMs = i
		case chBlockableSystem:
			c.BlockableSystem = bv
		case chAllowBubbles:
			c.AllowBubbles = int(i)
		case chImportanceLockedDefaultApp:
			c.ImportanceLockedDefaultApp = bv
		case chOriginalImportance:
			c.OriginalImportance = int(i)
		case chDemoted:
			c.Demoted = bv
		case chImportantConvo:
			c.ImportantConvo = bv
		case chLastNotificationUpdateTimeMs:
			c.LastNotificationUpdateTimeMs = i
		case chUserLockedFields:
			c.UserLockedFields = int(i)
		}
		return n, nil
	})
	if err != nil {
		return nil, err
	}
	c.Normalize()
	return c, nil
}

// MarshalGroup encodes g and its channels.
func MarshalGroup(g *api.ChannelGroup) []byte {
	e := &encoder{}
	e.str(grID, g.ID)
	e.str(grName, g.Name)
	e.str(grDescription, g.Description)
	e.boolean(grBlocked, g.Blocked)
	for i := range g.Channels {
		e.message(grChannels, MarshalChannel(&g.Channels[i]))
	}
	e.sint(grUserLockedFields, int64(g.UserLockedFields))
	return e.b
}

// UnmarshalGroup decodes a message produced by MarshalGroup.
func UnmarshalGroup(b []byte) (*api.ChannelGroup, error) {
	g := &api.ChannelGroup{}
	err := walk(b, func(num protowire.Number, typ protowire.Type, v []byte) (int, error) {
		switch num {
		case grID, grName, grDescription:
			if typ != protowire.BytesType {
				return 0, wrongType(num)
			}
			s, n := protowire.ConsumeString(v)
			switch num {
			case grID:
				g.ID = s
			case grName:
				g.Name = s
			case grDescription:
				g.Description = s
			}
			return n, nil
		case grChannels:
			if typ != protowire.BytesType {
				return 0, wrongType(num)
			}
			p, n := protowire.ConsumeBytes(v)
			if n < 0 {
				return n, nil
			}
			c, err := UnmarshalChannel(p)
			if err != nil {
				return 0, err
			}
			g.Channels = append(g.Channels, *c)
			return n, nil
		case grBlocked, grUserLockedFields:
			if typ != protowire.VarintType {
				return 0, wrongType(num)
			}
			x, n := protowire.ConsumeVarint(v)
			if num == grBlocked {
				g.Blocked = protowire.DecodeBool(x)
			} else {
				g.UserLockedFields = int(protowire.DecodeZigZag(x))
			}
			return n, nil
		}
		return skip, nil
	})
	if err != nil {
		return nil, err
	}
	g.Normalize()
	return g, nil
}

func wrongType(num protowire.Number) error {
	return fmt.Errorf("%w: field %d has unexpected wire type", ErrCorrupt, num)
}
