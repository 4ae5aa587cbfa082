package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	ok, err := VerifyPassword(hash, "correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword(hash, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	again, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "salted")
}

func TestHashPassword_Rejects(t *testing.T) {
	_, err := HashPassword("")
	assert.Error(t, err)

	_, err = HashPassword(strings.Repeat("x", maxPasswordLength+1))
	assert.Error(t, err)
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	for _, bad := range []string{"", "plain", "$argon2i$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA", "$argon2id$v=1$m=1,t=1,p=1$c2FsdA$aGFzaA"} {
		ok, err := VerifyPassword(bad, "pw")
		assert.NoError(t, err)
		assert.False(t, ok)
	}

	ok, err := VerifyPassword("$argon2id$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA", strings.Repeat("x", maxPasswordLength+1))
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestNeedsRehash(t *testing.T) {
	hash, err := HashPassword("pw")
	require.NoError(t, err)
	assert.False(t, NeedsRehash(hash))
	assert.True(t, NeedsRehash("$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$aGFzaA"))
	assert.True(t, NeedsRehash("junk"))
}
