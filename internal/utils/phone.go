package utils

import "strings"

// NormalizePhone strips everything but digits from a phone number. Meta sends
// numbers like "14155552671" while the dashboard form may contain "+1 (415)
// 555-2671"; both must land on the same profile row.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
