package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUIDArithmetic(t *testing.T) {
	uid := UID(10, 10123)
	assert.Equal(t, 1010123, uid)
	assert.Equal(t, 10, UserID(uid))
	assert.Equal(t, 10123, AppID(uid))
	assert.True(t, IsApp(uid))
	assert.False(t, IsApp(1000))
	assert.False(t, IsApp(0))
	assert.True(t, SameApp(uid, 10123))
	assert.False(t, SameUser(uid, 10123))
}

func TestUserHandleOf(t *testing.T) {
	assert.Equal(t, HandleSystem, UserHandleOf(UserSystem))
	assert.Equal(t, HandleAll, UserHandleOf(UserAll))

	h := UserHandleOf(11)
	assert.Equal(t, 11, h.ID())
	assert.Equal(t, h, UserHandleOf(11))
	assert.Equal(t, "UserHandle{11}", h.String())

	for i := 100; i < 100+3*maxCachedUserHandles; i++ {
		UserHandleOf(i)
	}
	assert.LessOrEqual(t, userHandles.Len(), maxCachedUserHandles)
}
