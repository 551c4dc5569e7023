package service

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/nyaruka/phonenumbers"

	"github.com/aussiebroadwan/membership/internal/membership/domain"
)

// DefaultPhoneRegion is used to parse phone numbers written without a
// country code.
const DefaultPhoneRegion = "TH"

var textPolicy = bluemonday.StrictPolicy()

// normalizeProfile strips markup from the free-text fields and rewrites the
// phone number in E.164.
func normalizeProfile(p domain.Profile, region string) (domain.Profile, error) {
	out := domain.Profile{Translations: make([]domain.Translation, 0, len(p.Translations))}

	for _, t := range p.Translations {
		out.Translations = append(out.Translations, domain.Translation{
			LanguageCode: strings.ToLower(strings.TrimSpace(t.LanguageCode)),
			FirstName:    cleanText(t.FirstName),
			LastName:     cleanText(t.LastName),
			Nickname:     cleanText(t.Nickname),
		})
	}

	phone, err := normalizePhone(p.Phone, region)
	if err != nil {
		return domain.Profile{}, err
	}
	out.Phone = phone
	return out, nil
}

func cleanText(s string) string {
	return strings.TrimSpace(textPolicy.Sanitize(s))
}

func normalizePhone(raw, region string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	if region == "" {
		region = DefaultPhoneRegion
	}

	num, err := phonenumbers.Parse(raw, strings.ToUpper(region))
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalidPhone
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}
