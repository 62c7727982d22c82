package export

import (
	"strings"

	"github.com/wagnerlima/pocketnetwork/internal/models"
)

// GenerateVCard renders one person as a vCard 3.0.
func GenerateVCard(p models.Person) string {
	var b strings.Builder
	line := func(s string) {
		b.WriteString(s)
		b.WriteString("\r\n")
	}

	line("BEGIN:VCARD")
	line("VERSION:3.0")
	line("N:" + structuredName(p.Name))
	line("FN:" + escapeVCard(p.Name))
	if p.Company != "" {
		line("ORG:" + escapeVCard(p.Company))
	}
	if p.Role != "" {
		line("TITLE:" + escapeVCard(p.Role))
	}
	if p.Email != "" {
		line("EMAIL;TYPE=INTERNET:" + escapeVCard(p.Email))
	}
	if p.Phone != "" {
		line("TEL;TYPE=CELL:" + escapeVCard(p.Phone))
	}
	if p.LinkedInURL != "" {
		line("URL:" + escapeVCard(p.LinkedInURL))
	}
	if p.Notes != "" {
		line("NOTE:" + escapeVCard(p.Notes))
	}
	// Only inline data URIs can be embedded; http photo links have no
	// portable vCard 3.0 representation.
	if data, ok := strings.CutPrefix(p.PhotoURL, "data:image"); ok {
		if _, b64, found := strings.Cut(data, "base64,"); found {
			line("PHOTO;ENCODING=b;TYPE=JPEG:" + b64)
		}
	}
	line("END:VCARD")
	return b.String()
}

// GenerateVCards renders a batch, one card after another.
func GenerateVCards(people []models.Person) string {
	cards := make([]string, len(people))
	for i, p := range people {
		cards[i] = GenerateVCard(p)
	}
	return strings.Join(cards, "\n")
}

// structuredName splits a display name into the N field's
// last;first;;; form. The final word is treated as the family name.
func structuredName(name string) string {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return ";;;;"
	}
	last := parts[len(parts)-1]
	first := strings.Join(parts[:len(parts)-1], " ")
	if first == "" {
		first = last
		last = ""
	}
	return escapeVCard(last) + ";" + escapeVCard(first) + ";;;"
}

// escapeVCard escapes TEXT values per RFC 2426.
func escapeVCard(s string) string {
	r := strings.NewReplacer(
		"\\", "\\\\",
		"\n", "\\n",
		",", "\\,",
		";", "\\;",
	)
	return r.Replace(s)
}
