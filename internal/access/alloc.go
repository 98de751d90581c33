// Package access implements the server-access request workflow:
// request, approve, reject, revoke, and credential allocation.
package access

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/lab-portal/backend/internal/models"
)

// DefaultSubnetPrefix is the network the portal allocates member
// addresses from.
const DefaultSubnetPrefix = "10.144.172."

// firstHost is the lowest host octet handed out; lower addresses are
// reserved for infrastructure.
const firstHost = 10

// ErrSubnetExhausted is returned when no host address is free.
var ErrSubnetExhausted = errors.New("no free address in subnet")

// NextAvailableIP picks the first free address in the subnet, starting
// at .10. Only each user's base address (the first entry of its IP
// list) counts as taken, matching how addresses are issued one per user.
func NextAvailableIP(users []models.User, subnetPrefix string) (string, error) {
	used := make(map[string]bool)
	for _, u := range users {
		if ips := u.IPList(); len(ips) > 0 {
			used[ips[0]] = true
		}
	}

	for host := firstHost; host < 255; host++ {
		candidate := fmt.Sprintf("%s%d", subnetPrefix, host)
		if !used[candidate] {
			return candidate, nil
		}
	}
	return "", ErrSubnetExhausted
}

// NewAccessCode draws a random 4-digit code not yet assigned to any user.
func NewAccessCode(rng *rand.Rand, users []models.User) string {
	used := make(map[string]bool)
	for _, u := range users {
		if u.ServerCode != "" {
			used[u.ServerCode] = true
		}
	}

	for {
		code := fmt.Sprintf("%d", 1000+rng.Intn(9000))
		if !used[code] {
			return code
		}
	}
}
