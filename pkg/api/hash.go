package api

import (
	"encoding/binary"
	"encoding/hex"
	"strconv"

	"github.com/zeebo/blake3"
)

// Fingerprint returns a deterministic BLAKE3 digest of the channel content.
func (c *Channel) Fingerprint() string {
	h := blake3.New()
	writeChannel(h, c)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint covers the group and every channel it carries, in order.
func (g *ChannelGroup) Fingerprint() string {
	h := blake3.New()
	writeString(h, g.ID)
	writeString(h, g.Name)
	writeString(h, g.Description)
	writeBool(h, g.Blocked)
	writeInt(h, int64(g.UserLockedFields))
	writeInt(h, int64(len(g.Channels)))
	for i := range g.Channels {
		writeChannel(h, &g.Channels[i])
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writeChannel(h *blake3.Hasher, c *Channel) {
	for _, s := range []string{c.ID, c.Name, c.Description, c.Sound, c.Group, c.ParentID, c.ConversationID} {
		writeString(h, s)
	}
	for _, n := range []int64{
		int64(c.Importance), int64(c.LockscreenVisibility), int64(c.LightColor),
		c.DeletedTimeMs, int64(c.AllowBubbles), int64(c.OriginalImportance),
		c.LastNotificationUpdateTimeMs, int64(c.UserLockedFields),
	} {
		writeInt(h, n)
	}
	for _, b := range []bool{
		c.BypassDnd, c.Lights, c.UserVisibleTaskShown, c.VibrationEnabled,
		c.ShowBadge, c.Deleted, c.BlockableSystem, c.ImportanceLockedDefaultApp,
		c.Demoted, c.ImportantConvo,
	} {
		writeBool(h, b)
	}
	writeInt(h, int64(len(c.VibrationPattern)))
	for _, v := range c.VibrationPattern {
		writeInt(h, v)
	}
}

// Strings are length-prefixed so adjacent fields cannot collide.
func writeString(h *blake3.Hasher, s string) {
	_, _ = h.Write([]byte(strconv.Itoa(len(s))))
	_, _ = h.Write([]byte{':'})
	_, _ = h.Write([]byte(s))
}

func writeInt(h *blake3.Hasher, n int64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(n))
	_, _ = h.Write(b[:])
}

func writeBool(h *blake3.Hasher, v bool) {
	if v {
		_, _ = h.Write([]byte{1})
		return
	}
	_, _ = h.Write([]byte{0})
}
