package format

import (
	"strconv"
	"strings"

	"github.com/nihilian/ncheditor/pkg/api"
)

// kv is one labelled line of a detail view.
type kv struct{ k, v string }

func channelPairs(c *api.Channel) []kv {
	return []kv{
		{"id", c.ID},
		{"name", c.Name},
		{"description", c.Description},
		{"importance", strconv.Itoa(c.Importance)},
		{"bypassDnd", strconv.FormatBool(c.BypassDnd)},
		{"lockscreenVisibility", strconv.Itoa(c.LockscreenVisibility)},
		{"sound", c.Sound},
		{"lights", strconv.FormatBool(c.Lights)},
		{"lightColor", strconv.Itoa(c.LightColor)},
		{"vibrationPattern", joinInts(c.VibrationPattern)},
		{"userVisibleTaskShown", strconv.FormatBool(c.UserVisibleTaskShown)},
		{"vibrationEnabled", strconv.FormatBool(c.VibrationEnabled)},
		{"showBadge", strconv.FormatBool(c.ShowBadge)},
		{"deleted", strconv.FormatBool(c.Deleted)},
		{"deletedTimeMs", strconv.FormatInt(c.DeletedTimeMs, 10)},
		{"group", c.Group},
		{"blockableSystem", strconv.FormatBool(c.BlockableSystem)},
		{"allowBubbles", strconv.Itoa(c.AllowBubbles)},
		{"importanceLockedDefaultApp", strconv.FormatBool(c.ImportanceLockedDefaultApp)},
		{"originalImportance", strconv.Itoa(c.OriginalImportance)},
		{"parentId", c.ParentID},
		{"conversationId", c.ConversationID},
		{"demoted", strconv.FormatBool(c.Demoted)},
		{"importantConvo", strconv.FormatBool(c.ImportantConvo)},
		{"lastNotificationUpdateTimeMs", strconv.FormatInt(c.LastNotificationUpdateTimeMs, 10)},
		{"userLockedFields", strconv.Itoa(c.UserLockedFields)},
	}
}

func groupPairs(g *api.ChannelGroup) []kv {
	ids := make([]string, 0, len(g.Channels))
	for _, c := range g.Channels {
		ids = append(ids, c.ID)
	}
	return []kv{
		{"id", g.ID},
		{"name", g.Name},
		{"description", g.Description},
		{"blocked", strconv.FormatBool(g.Blocked)},
		{"channels", "[" + strings.Join(ids, ",") + "]"},
		{"userLockedFields", strconv.Itoa(g.UserLockedFields)},
	}
}

func pairs(r api.Record) []kv {
	switch v := r.(type) {
	case *api.Channel:
		return channelPairs(v)
	case *api.ChannelGroup:
		return groupPairs(v)
	}
	return nil
}

func joinInts(vs []int64) string {
	if len(vs) == 0 {
		return ""
	}
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func esc(field string) string {
	field = strings.ReplaceAll(field, "\t", "\\t")
	field = strings.ReplaceAll(field, "\n", "\\n")
	return field
}
