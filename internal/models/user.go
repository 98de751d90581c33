// Package models contains domain types for the Lab Server Portal.
package models

// UserType discriminates administrators from regular researchers.
type UserType string

const (
	UserTypeAdmin  UserType = "admin"
	UserTypeMember UserType = "member"
)

// User is one document of the users collection.
//
// IP holds a semicolon-joined list of addresses assigned to the user;
// an empty IP together with a non-empty ZerotierID means the access
// request is pending approval.
type User struct {
	ID            string   `json:"uid"`
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	IP            string   `json:"ip,omitempty"`
	ServerCode    string   `json:"serverCode,omitempty"`
	ZerotierID    string   `json:"zerotierId,omitempty"`
	SSHFolder     string   `json:"ssh_folder,omitempty"`
	Resilio       string   `json:"resilio,omitempty"`
	Type          UserType `json:"type"`
	Group         string   `json:"group,omitempty"`
	Lab           string   `json:"lab,omitempty"`
	ServerStorage int64    `json:"serverStorage,omitempty"` // MB reported by the agent
}

// IPList splits the semicolon-joined IP field into trimmed, non-empty tokens.
func (u *User) IPList() []string {
	return SplitIPList(u.IP)
}

// HasAccess reports whether the user currently holds server credentials.
func (u *User) HasAccess() bool {
	return u.IP != "" && u.ServerCode != ""
}

// PendingRequest reports whether the user has requested access that has
// not been approved yet.
func (u *User) PendingRequest() bool {
	return u.ZerotierID != "" && u.IP == ""
}

// AccessRecord is one entry of the exported access-code table,
// keyed by access code in AccessTable.
type AccessRecord struct {
	Name      string `json:"name"`
	IP        string `json:"ip"`
	SSHFolder string `json:"ssh_folder"`
}

// AccessTable maps access code to its record. This is the authoritative
// join key for identity resolution in the statistics pipeline.
type AccessTable map[string]AccessRecord

// UserIdentity is the result of resolving a raw address back to the
// user record that currently claims it.
type UserIdentity struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SSHFolder string `json:"ssh_folder"`
}
