package http

import (
	"github.com/aussiebroadwan/membership/internal/membership/domain"
	"github.com/aussiebroadwan/membership/pkg/jwtx"
	"github.com/aussiebroadwan/membership/pkg/membersdk"
)

func toProfile(p membersdk.ProfileInput) domain.Profile {
	out := domain.Profile{
		Phone:        p.Phone,
		Translations: make([]domain.Translation, 0, len(p.Translations)),
	}
	for _, t := range p.Translations {
		out.Translations = append(out.Translations, domain.Translation{
			LanguageCode: t.LanguageCode,
			FirstName:    t.FirstName,
			LastName:     t.LastName,
			Nickname:     t.Nickname,
		})
	}
	return out
}

func fromRoles(roles []domain.Role) []membersdk.Role {
	out := make([]membersdk.Role, 0, len(roles))
	for _, r := range roles {
		out = append(out, membersdk.Role{ID: r.ID, Name: r.Name, Description: r.Description})
	}
	return out
}

func fromPermissions(perms []domain.Permission) []membersdk.Permission {
	out := make([]membersdk.Permission, 0, len(perms))
	for _, p := range perms {
		out = append(out, membersdk.Permission{ID: p.ID, Name: p.Name, Description: p.Description})
	}
	return out
}

func fromMember(m domain.Member) membersdk.User {
	u := membersdk.User{
		ID:           m.ID,
		Email:        m.Email,
		StatusID:     int64(m.Status),
		Status:       m.Status.String(),
		Phone:        m.Profile.Phone,
		Translations: make([]membersdk.Translation, 0, len(m.Profile.Translations)),
		Roles:        fromRoles(m.Roles),
		Permissions:  m.PermissionNames(),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	if m.Avatar != nil {
		u.Avatar = &membersdk.Avatar{ID: m.Avatar.ID, BaseURL: m.Avatar.BaseURL, LazyURL: m.Avatar.LazyURL}
	}
	for _, t := range m.Profile.Translations {
		u.Translations = append(u.Translations, membersdk.Translation{
			LanguageCode: t.LanguageCode,
			FirstName:    t.FirstName,
			LastName:     t.LastName,
			Nickname:     t.Nickname,
		})
	}
	return u
}

func fromInvitation(inv domain.Invitation) membersdk.Invitation {
	return membersdk.Invitation{
		ID:        inv.ID,
		InviterID: inv.InviterID,
		Email:     inv.Email,
		RoleID:    inv.RoleID,
		StatusID:  int64(inv.Status),
		Status:    inv.Status.String(),
		ExpiresAt: inv.ExpiresAt,
		CreatedAt: inv.CreatedAt,
	}
}

func fromLoginTransaction(t domain.LoginTransaction) membersdk.LoginTransaction {
	return membersdk.LoginTransaction{
		ID:        t.ID,
		UserID:    t.UserID,
		Outcome:   string(t.Outcome),
		IPAddress: t.IPAddress,
		UserAgent: t.UserAgent,
		CreatedAt: t.CreatedAt,
	}
}

func fromClaims(c jwtx.Claims) membersdk.TokenClaims {
	out := membersdk.TokenClaims{
		UserID:      c.UserID,
		Email:       c.Email,
		Name:        c.Name,
		Role:        c.Role,
		Roles:       c.Roles,
		Permissions: c.Permissions,
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time.UTC()
	}
	return out
}
