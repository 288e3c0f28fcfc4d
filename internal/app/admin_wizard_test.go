package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdminAllowList(t *testing.T) {
	list := NewAdminAllowList([]string{" +628111 ", "628222", ""})

	assert.True(t, list.IsAdmin("628111"))
	assert.True(t, list.IsAdmin("+628222"))
	assert.False(t, list.IsAdmin("628333"))
	assert.False(t, list.IsAdmin(""))
	assert.Len(t, list, 2)

	assert.NoError(t, list.Authorize("628111"))
	assert.ErrorIs(t, list.Authorize("628333"), ErrAdminNotAuthorized)
}
