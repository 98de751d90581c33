// Package stats implements the session/usage aggregation pipeline:
// identity resolution, per-user aggregation, time windowing, and the
// bar/timeline geometry the dashboard renders.
package stats

import (
	"sort"

	"github.com/lab-portal/backend/internal/models"
)

// ResolveIP maps a source address to the user record that claims it.
// Records are scanned in ascending access-code order so that an address
// appearing in more than one record resolves deterministically; first
// match wins. ok is false for unmapped addresses, which callers skip
// rather than treat as errors.
func ResolveIP(ip string, access models.AccessTable) (models.UserIdentity, bool) {
	codes := make([]string, 0, len(access))
	for code := range access {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		record := access[code]
		for _, known := range models.SplitIPList(record.IP) {
			if known == ip {
				return identityFor(code, record), true
			}
		}
	}
	return models.UserIdentity{}, false
}

func identityFor(code string, record models.AccessRecord) models.UserIdentity {
	id := models.UserIdentity{
		ID:        code,
		Name:      record.Name,
		SSHFolder: record.SSHFolder,
	}
	if id.Name == "" {
		id.Name = "User " + code
	}
	if id.SSHFolder == "" {
		id.SSHFolder = "Unknown"
	}
	return id
}

// IPNameMap flattens a set of user records into an address-to-name
// lookup for the command-log view. Later records win on duplicate
// addresses, matching a full-collection scan.
func IPNameMap(users []models.User) map[string]string {
	m := make(map[string]string)
	for _, u := range users {
		for _, ip := range u.IPList() {
			m[ip] = u.Name
		}
	}
	return m
}
