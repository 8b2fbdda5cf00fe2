package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	secret := []byte("s")
	id := uuid.New()

	token, err := CreateToken(secret, id, "admin")
	require.NoError(t, err)

	claims, err := ValidateToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, id.String(), claims.UserID)
	assert.Equal(t, "admin", claims.Role)

	_, err = ValidateToken([]byte("other"), token)
	assert.Error(t, err)

	_, err = CreateToken(nil, id, "admin")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.True(t, PasswordMatches(hash, "hunter22"))
	assert.False(t, PasswordMatches(hash, "hunter23"))
	assert.False(t, PasswordMatches("not-a-hash", "hunter22"))

	_, err = HashPassword("")
	assert.ErrorIs(t, err, ErrInvalidRequest)
	_, err = HashPassword(strings.Repeat("x", 73))
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestOnlyDigits(t *testing.T) {
	assert.Equal(t, "12345678000190", OnlyDigits("12.345.678/0001-90"))
	assert.Equal(t, "5511999990000", OnlyDigits("+55 (11) 99999-0000"))
	assert.Equal(t, "", OnlyDigits("abc"))
}

func TestParseDate(t *testing.T) {
	d, ok := ParseDate("2025-03-10")
	require.True(t, ok)
	assert.Equal(t, "2025-03-10", d.Format(DateLayout))
	assert.Equal(t, Location(), d.Location())

	ts, ok := ParseDate("2025-03-10T02:00:00Z")
	require.True(t, ok)
	// 02:00 UTC is still the 9th in Brasília.
	assert.Equal(t, "2025-03-09", DateOf(ts).Format(DateLayout))

	for _, bad := range []string{"", "10/03/2025", "2025-13-01"} {
		_, ok := ParseDate(bad)
		assert.False(t, ok, bad)
	}
}

func TestFromUnixSecondsBR(t *testing.T) {
	assert.True(t, FromUnixSecondsBR(0).IsZero())
	got := FromUnixSecondsBR(1741996800)
	assert.Equal(t, int64(1741996800), got.Unix())
	assert.Equal(t, "", FormatRFC3339BR(time.Time{}))
}
