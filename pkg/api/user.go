package api

import (
	"fmt"

	"github.com/nihilian/ncheditor/internal/lru"
)

// Uid layout: each user owns a contiguous range of PerUserRange uids.
const (
	PerUserRange = 100000

	UserAll           = -1
	UserCurrent       = -2
	UserCurrentOrSelf = -3
	UserNull          = -10000
	UserSystem        = 0

	FirstApplicationUID = 10000
	LastApplicationUID  = 19999

	maxCachedUserHandles = 32
)

// UserHandle identifies a user on the device.
type UserHandle struct {
	id int
}

var (
	HandleAll    = UserHandle{id: UserAll}
	HandleSystem = UserHandle{id: UserSystem}

	userHandles = lru.New[int, UserHandle](maxCachedUserHandles, nil)
)

// UserHandleOf returns the handle for userID. Well-known ids are never
// cached; the rest go through a bounded LRU.
func UserHandleOf(userID int) UserHandle {
	switch userID {
	case UserSystem:
		return HandleSystem
	case UserAll:
		return HandleAll
	}
	if h, ok := userHandles.Get(userID); ok {
		return h
	}
	h := UserHandle{id: userID}
	userHandles.Put(userID, h)
	return h
}

// ID returns the numeric user id.
func (u UserHandle) ID() int { return u.id }

func (u UserHandle) String() string { return fmt.Sprintf("UserHandle{%d}", u.id) }

// UID composes the uid of appID for userID.
func UID(userID, appID int) int {
	return userID*PerUserRange + appID%PerUserRange
}

// UserID extracts the user id from uid.
func UserID(uid int) int { return uid / PerUserRange }

// AppID extracts the app id from uid.
func AppID(uid int) int { return uid % PerUserRange }

// IsApp reports whether uid belongs to an installed application.
func IsApp(uid int) bool {
	if uid <= 0 {
		return false
	}
	a := AppID(uid)
	return a >= FirstApplicationUID && a <= LastApplicationUID
}

// SameUser reports whether both uids belong to the same user.
func SameUser(a, b int) bool { return UserID(a) == UserID(b) }

// SameApp reports whether both uids refer to the same app id.
func SameApp(a, b int) bool { return AppID(a) == AppID(b) }
