package wasvc

import (
	"net/url"
	"strings"
)

const baseURL = "https://wa.me/"

// Link builds a WhatsApp deep link for the given phone number with a prefilled
// message. The link is meant to be opened by the user; nothing is dispatched.
func Link(phone, text string) string {
	var b strings.Builder
	b.WriteString(baseURL)
	b.WriteString(cleanPhone(phone))
	if text != "" {
		b.WriteString("?text=")
		b.WriteString(url.QueryEscape(text))
	}
	return b.String()
}

// cleanPhone keeps digits only; wa.me wants an international number without "+".
func cleanPhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
