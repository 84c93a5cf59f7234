package geocoding

import (
	"regexp"
	"strings"

	"github.com/FACorreiaa/go-household-registry/internal/textutil"
)

var (
	postalCodePattern  = regexp.MustCompile(`(?i)\bCEP\s*\d{5}-?\d{3}\b`)
	punctuationPattern = regexp.MustCompile(`[,;]`)

	// Two-letter state abbreviations expanded to accent-free full names so
	// the geocoding provider matches them reliably.
	stateNames = map[string]string{
		"AC": "Acre",
		"AL": "Alagoas",
		"AP": "Amapa",
		"AM": "Amazonas",
		"BA": "Bahia",
		"CE": "Ceara",
		"DF": "Distrito Federal",
		"ES": "Espirito Santo",
		"GO": "Goias",
		"MA": "Maranhao",
		"MT": "Mato Grosso",
		"MS": "Mato Grosso do Sul",
		"MG": "Minas Gerais",
		"PA": "Para",
		"PB": "Paraiba",
		"PR": "Parana",
		"PE": "Pernambuco",
		"PI": "Piaui",
		"RJ": "Rio de Janeiro",
		"RN": "Rio Grande do Norte",
		"RS": "Rio Grande do Sul",
		"RO": "Rondonia",
		"RR": "Roraima",
		"SC": "Santa Catarina",
		"SP": "Sao Paulo",
		"SE": "Sergipe",
		"TO": "Tocantins",
	}

	statePatterns = compileStatePatterns()
)

func compileStatePatterns() map[*regexp.Regexp]string {
	patterns := make(map[*regexp.Regexp]string, len(stateNames))
	for abbr, name := range stateNames {
		patterns[regexp.MustCompile(`(?i)\b`+abbr+`\b`)] = name
	}
	return patterns
}

// NormalizeQuery prepares an address string for the geocoding provider:
// accents stripped, postal-code tokens removed, state abbreviations expanded
// to full names, punctuation and hyphens replaced by spaces, whitespace
// collapsed.
func NormalizeQuery(address string) string {
	s := textutil.StripAccents(address)
	s = postalCodePattern.ReplaceAllString(s, "")
	for pattern, name := range statePatterns {
		s = pattern.ReplaceAllString(s, name)
	}
	s = punctuationPattern.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "-", " ")
	return strings.Join(strings.Fields(s), " ")
}

// StripNeighborhoodSegment removes the comma segment that most likely holds
// the neighborhood from an assembled address ("street, number, neighborhood,
// City - ST, CEP x, Brasil"). Returns ok=false when no segment qualifies.
func StripNeighborhoodSegment(address string) (string, bool) {
	parts := strings.Split(address, ",")
	if len(parts) < 3 {
		return "", false
	}
	if !isLikelyNeighborhood(strings.TrimSpace(parts[2])) {
		return "", false
	}

	kept := make([]string, 0, len(parts)-1)
	for i, part := range parts {
		if i == 2 {
			continue
		}
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		kept = append(kept, trimmed)
	}
	if len(kept) == 0 {
		return "", false
	}
	return strings.Join(kept, ", "), true
}

func isLikelyNeighborhood(part string) bool {
	if part == "" {
		return false
	}
	if strings.EqualFold(part, "Brasil") {
		return false
	}
	if len(part) >= 3 && strings.EqualFold(part[:3], "CEP") {
		return false
	}
	// "City - ST" segments carry the separator; neighborhoods do not.
	return !strings.Contains(part, " - ")
}
