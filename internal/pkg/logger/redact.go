package logger

import "unicode/utf8"

// RedactName masks a personal name for safe logging, keeping the initial.
// "Lovelace" → "L***"; an empty name stays empty.
func RedactName(name string) string {
	if name == "" {
		return ""
	}
	r, _ := utf8.DecodeRuneInString(name)
	return string(r) + "***"
}
