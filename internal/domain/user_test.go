package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserValidatesDisplayName(t *testing.T) {
	u, err := NewUser("u1", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.DisplayName)

	_, err = NewUser("u1", "")
	assert.ErrorIs(t, err, ErrDisplayNameEmpty)

	_, err = NewUser("u1", strings.Repeat("x", MaxDisplayNameLen+1))
	assert.ErrorIs(t, err, ErrDisplayNameTooLong)
}

func TestNewMemberAllowsAnonymous(t *testing.T) {
	m, err := NewMember("u1", "")
	require.NoError(t, err)
	assert.Empty(t, m.DisplayName)

	m, err = NewMember("u1", "Bob")
	require.NoError(t, err)
	assert.Equal(t, "Bob", m.DisplayName)

	_, err = NewMember("u1", strings.Repeat("x", MaxDisplayNameLen+1))
	assert.ErrorIs(t, err, ErrDisplayNameTooLong)
}
