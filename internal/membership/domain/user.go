package domain

import (
	"strings"
	"time"
)

type User struct {
	ID           string
	Email        string
	PasswordHash string
	Status       Status
	Avatar       *Avatar
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Avatar references an externally hosted image.
type Avatar struct {
	ID      string
	BaseURL string
	LazyURL string
}

// Profile is the user_info row plus its translations.
type Profile struct {
	Phone        string
	Translations []Translation
}

type Translation struct {
	LanguageCode string
	FirstName    string
	LastName     string
	Nickname     string
}

// DisplayName picks the first translation's nickname, or its first name.
func (p Profile) DisplayName() string {
	if len(p.Translations) == 0 {
		return ""
	}
	t := p.Translations[0]
	if t.Nickname != "" {
		return t.Nickname
	}
	return strings.TrimSpace(t.FirstName + " " + t.LastName)
}

// Member is a user with everything a view or token needs.
type Member struct {
	User
	Profile     Profile
	Roles       []Role
	Permissions []Permission
}

// PermissionNames returns the names of m's permissions in id order.
func (m Member) PermissionNames() []string {
	names := make([]string, 0, len(m.Permissions))
	for _, p := range m.Permissions {
		names = append(names, p.Name)
	}
	return names
}

// RoleIDs returns the ids of m's roles.
func (m Member) RoleIDs() []int64 {
	ids := make([]int64, 0, len(m.Roles))
	for _, r := range m.Roles {
		ids = append(ids, r.ID)
	}
	return ids
}

// PrimaryRole is the first assigned role, or 0.
func (m Member) PrimaryRole() int64 {
	if len(m.Roles) == 0 {
		return 0
	}
	return m.Roles[0].ID
}

// NormalizeEmail trims and lower-cases an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
