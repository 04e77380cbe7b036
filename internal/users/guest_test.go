package users

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuestUsernameFormat(t *testing.T) {
	name := GuestUsername()

	assert.True(t, strings.HasPrefix(name, "guest_"))
	assert.Len(t, name, len("guest_")+8)

	suffix := strings.TrimPrefix(name, "guest_")
	for _, r := range suffix {
		assert.Contains(t, "0123456789abcdef", string(r))
	}
}

func TestGuestUsernameVaries(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		seen[GuestUsername()] = true
	}
	// collisions over 100 draws would indicate a broken source of randomness
	assert.Greater(t, len(seen), 95)
}
