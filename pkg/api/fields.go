package api

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrUnknownField   = errors.New("unknown field")
	ErrInvalidValue   = errors.New("invalid field value")
	ErrConversationID = errors.New("conversationId and parentId must be set together")
)

// FieldInfo describes one editable key of the set vocabulary.
type FieldInfo struct {
	Key   string
	Type  string
	Help  string
	Group bool
}

// ChannelFields lists the keys ApplyChannelFields accepts, in display order.
var ChannelFields = []FieldInfo{
	{Key: "name", Type: "string", Help: "user-facing name of the channel"},
	{Key: "description", Type: "string", Help: "brief description text of the channel"},
	{Key: "importance", Type: "int", Help: "0-5, affects how notifications get displayed"},
	{Key: "bypassDnd", Type: "bool", Help: "whether these notifications interrupt Do Not Disturb"},
	{Key: "lockscreenVisibility", Type: "int", Help: "-1 secret, 0 private, 1 public, -1000 no override"},
	{Key: "sound", Type: "string", Help: "sound uri, empty to clear"},
	{Key: "lights", Type: "bool", Help: "whether the notification light is used"},
	{Key: "lightColor", Type: "int", Help: "ARGB color of the notification light"},
	{Key: "vibrationPattern", Type: "[]int64", Help: "comma separated durations, brackets optional"},
	{Key: "userVisibleTaskShown", Type: "bool", Help: "whether a foreground service was shown for the channel"},
	{Key: "vibrationEnabled", Type: "bool", Help: "whether notifications vibrate"},
	{Key: "showBadge", Type: "bool", Help: "whether to show a dot on the app's launcher icon"},
	{Key: "deleted", Type: "bool", Help: "whether the channel is deleted"},
	{Key: "deletedTimeMs", Type: "int64", Help: "deletion time in epoch milliseconds"},
	{Key: "group", Type: "string", Help: "group id the channel is assigned to"},
	{Key: "blockableSystem", Type: "bool", Help: "true lets a fixed-permission system app's channel be freely changed"},
	{Key: "allowBubbles", Type: "int", Help: "-1 default, 0 off, 1 on"},
	{Key: "importanceLockedDefaultApp", Type: "bool", Help: "importance locked by a default app role"},
	{Key: "originalImportance", Type: "int", Help: "importance requested by the app"},
	{Key: "parentId", Type: "string", Help: "parent channel of a conversation, requires conversationId"},
	{Key: "conversationId", Type: "string", Help: "conversation id, requires parentId"},
	{Key: "demoted", Type: "bool", Help: "whether the conversation was demoted"},
	{Key: "importantConvo", Type: "bool", Help: "whether the conversation is marked important"},
	{Key: "lastNotificationUpdateTimeMs", Type: "int64", Help: "last post time in epoch milliseconds"},
}

// GroupFields lists the keys ApplyGroupFields accepts.
var GroupFields = []FieldInfo{
	{Key: "description", Type: "string", Help: "brief description text of the group", Group: true},
	{Key: "blocked", Type: "bool", Help: "whether every channel in the group is blocked", Group: true},
}

// FieldKeys returns the keys of fields.
func FieldKeys(fields []FieldInfo) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.Key)
	}
	return out
}

// ParseAssignments splits key=value arguments into a map. A later
// assignment of the same key wins.
func ParseAssignments(args []string) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: %q is not key=value", ErrInvalidValue, a)
		}
		out[k] = v
	}
	return out, nil
}

// ApplyChannelFields applies updates to c. Nothing is modified when any
// key is unknown or any value fails to parse.
func ApplyChannelFields(c *Channel, updates map[string]string) error {
	next := *c
	next.VibrationPattern = append([]int64(nil), c.VibrationPattern...)

	_, hasParent := updates["parentId"]
	_, hasConv := updates["conversationId"]
	if hasParent != hasConv {
		return ErrConversationID
	}

	for _, k := range sortedKeys(updates) {
		v := updates[k]
		var err error
		switch k {
		case "name":
			next.SetName(v)
		case "description":
			next.SetDescription(v)
		case "importance":
			next.Importance, err = parseInt(k, v)
		case "bypassDnd":
			next.BypassDnd, err = parseBool(k, v)
		case "lockscreenVisibility":
			next.LockscreenVisibility, err = parseInt(k, v)
		case "sound":
			next.Sound = v
		case "lights":
			next.Lights, err = parseBool(k, v)
		case "lightColor":
			next.LightColor, err = parseInt(k, v)
		case "vibrationPattern":
			var p []int64
			if p, err = ParseVibrationPattern(v); err == nil {
				next.SetVibrationPattern(p)
			}
		case "userVisibleTaskShown":
			next.UserVisibleTaskShown, err = parseBool(k, v)
		case "vibrationEnabled":
			next.VibrationEnabled, err = parseBool(k, v)
		case "showBadge":
			next.ShowBadge, err = parseBool(k, v)
		case "deleted":
			next.Deleted, err = parseBool(k, v)
		case "deletedTimeMs":
			next.DeletedTimeMs, err = parseInt64(k, v)
		case "group":
			next.SetGroup(v)
		case "blockableSystem":
			next.BlockableSystem, err = parseBool(k, v)
		case "allowBubbles":
			next.AllowBubbles, err = parseInt(k, v)
		case "importanceLockedDefaultApp":
			next.ImportanceLockedDefaultApp, err = parseBool(k, v)
		case "originalImportance":
			next.OriginalImportance, err = parseInt(k, v)
		case "parentId", "conversationId":
			next.SetConversationID(updates["parentId"], updates["conversationId"])
		case "demoted":
			next.Demoted, err = parseBool(k, v)
		case "importantConvo":
			next.ImportantConvo, err = parseBool(k, v)
		case "lastNotificationUpdateTimeMs":
			next.LastNotificationUpdateTimeMs, err = parseInt64(k, v)
		default:
			return fmt.Errorf("%w: %q", ErrUnknownField, k)
		}
		if err != nil {
			return err
		}
	}
	*c = next
	return nil
}

// ApplyGroupFields applies updates to g with the same all-or-nothing rule
// as ApplyChannelFields.
func ApplyGroupFields(g *ChannelGroup, updates map[string]string) error {
	next := *g
	for _, k := range sortedKeys(updates) {
		v := updates[k]
		var err error
		switch k {
		case "description":
			next.SetDescription(v)
		case "blocked":
			next.Blocked, err = parseBool(k, v)
		default:
			return fmt.Errorf("%w: %q", ErrUnknownField, k)
		}
		if err != nil {
			return err
		}
	}
	*g = next
	return nil
}

// ParseVibrationPattern parses "[0,250,100]" or "0,250,100".
func ParseVibrationPattern(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		s = s[1 : len(s)-1]
	}
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: vibrationPattern %q: %v", ErrInvalidValue, s, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func parseInt(key, v string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q: want int", ErrInvalidValue, key, v)
	}
	return n, nil
}

func parseInt64(key, v string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q: want int64", ErrInvalidValue, key, v)
	}
	return n, nil
}

func parseBool(key, v string) (bool, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q: want bool", ErrInvalidValue, key, v)
	}
	return b, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
