package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidParticipantStatus(t *testing.T) {
	for _, status := range []string{StatusRegistered, StatusAttended, StatusCancelled, StatusNoShow} {
		assert.True(t, ValidParticipantStatus(status), status)
	}

	assert.False(t, ValidParticipantStatus("Registered"))
	assert.False(t, ValidParticipantStatus("noshow"))
	assert.False(t, ValidParticipantStatus(""))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	assert.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	u := User{Password: hash}
	assert.True(t, u.ComparePassword("s3cret-pass"))
	assert.False(t, u.ComparePassword("wrong"))
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleAdmin))
	assert.True(t, ValidRole(RoleEditor))
	assert.False(t, ValidRole("superuser"))
}
