package voices

import (
	"log"
	"strings"
)

// Normalize lowercases a speaker label and strips everything that is not
// a letter or digit. Generated dialogue decorates names with punctuation
// and honorifics, so matching happens on this reduced form.
func Normalize(label string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(label)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Resolve maps a speaker label from a script line to one of the profiles.
// Exact normalized match wins; failing that, a substring relationship in
// either direction takes the first match. Unresolvable labels fall back
// to the first profile rather than dropping the line.
//
// The substring pass is deliberately loose. Language models label speakers
// with variations like "Pastor Sarah" or "Sarah (laughing)", and a strict
// matcher would silently lose those lines.
func Resolve(label string, profiles []VoiceProfile) *VoiceProfile {
	if len(profiles) == 0 {
		return nil
	}

	normalized := Normalize(label)
	if normalized != "" {
		for i := range profiles {
			if Normalize(profiles[i].Name) == normalized {
				return &profiles[i]
			}
		}
		for i := range profiles {
			name := Normalize(profiles[i].Name)
			if name == "" {
				continue
			}
			if strings.Contains(normalized, name) || strings.Contains(name, normalized) {
				return &profiles[i]
			}
		}
	}

	log.Printf("[DEBUG] Unresolved speaker label %q, defaulting to host %q", label, profiles[0].Name)
	return &profiles[0]
}
