package access

import (
	"math/rand"
	"testing"

	"github.com/lab-portal/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextAvailableIP(t *testing.T) {
	users := []models.User{
		{IP: "10.144.172.10"},
		{IP: "10.144.172.11;10.144.172.200"},
	}

	ip, err := NextAvailableIP(users, DefaultSubnetPrefix)
	require.NoError(t, err)
	assert.Equal(t, "10.144.172.12", ip)
}

func TestNextAvailableIP_StartsAtTen(t *testing.T) {
	ip, err := NextAvailableIP(nil, DefaultSubnetPrefix)
	require.NoError(t, err)
	assert.Equal(t, "10.144.172.10", ip)
}

func TestNextAvailableIP_OnlyBaseAddressCounts(t *testing.T) {
	// A user's secondary addresses do not block allocation.
	users := []models.User{
		{IP: "10.144.172.99;10.144.172.10"},
	}

	ip, err := NextAvailableIP(users, DefaultSubnetPrefix)
	require.NoError(t, err)
	assert.Equal(t, "10.144.172.10", ip)
}

func TestNextAvailableIP_Exhausted(t *testing.T) {
	users := make([]models.User, 0, 245)
	for host := 10; host < 255; host++ {
		users = append(users, models.User{IP: DefaultSubnetPrefix + itoa(host)})
	}

	_, err := NextAvailableIP(users, DefaultSubnetPrefix)
	assert.ErrorIs(t, err, ErrSubnetExhausted)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [4]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

func TestNewAccessCode(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	code := NewAccessCode(rng, nil)
	require.Len(t, code, 4)
	assert.GreaterOrEqual(t, code, "1000")
	assert.LessOrEqual(t, code, "9999")
}

func TestNewAccessCode_SkipsUsed(t *testing.T) {
	// With a fixed seed the first draw is deterministic; mark it used
	// and verify the generator moves past it.
	rng := rand.New(rand.NewSource(42))
	first := NewAccessCode(rand.New(rand.NewSource(42)), nil)

	users := []models.User{{ServerCode: first}}
	second := NewAccessCode(rng, users)
	assert.NotEqual(t, first, second)
}
