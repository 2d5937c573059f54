package utils

import (
	"net/mail"
	"regexp"
	"strings"
)

var NigerianStates = []string{
	"Abia", "Adamawa", "Akwa Ibom", "Anambra", "Bauchi", "Bayelsa", "Benue",
	"Borno", "Cross River", "Delta", "Ebonyi", "Edo", "Ekiti", "Enugu", "FCT",
	"Gombe", "Imo", "Jigawa", "Kaduna", "Kano", "Katsina", "Kebbi", "Kogi",
	"Kwara", "Lagos", "Nasarawa", "Niger", "Ogun", "Ondo", "Osun", "Oyo",
	"Plateau", "Rivers", "Sokoto", "Taraba", "Yobe", "Zamfara",
}

var nigerianPhone = regexp.MustCompile(`^(\+234|0)[789][01]\d{8}$`)

func ValidateNigerianPhone(phone string) bool {
	return nigerianPhone.MatchString(phone)
}

// NormalizeState returns the canonical spelling of a Nigerian state, matched
// case-insensitively.
func NormalizeState(state string) (string, bool) {
	s := strings.TrimSpace(state)
	for _, st := range NigerianStates {
		if strings.EqualFold(st, s) {
			return st, true
		}
	}
	return "", false
}

func ValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CleanList trims items and drops empty ones. The result is never nil.
func CleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
