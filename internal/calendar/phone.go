package calendar

import "strings"

// NormalizePhone оставляет цифры и ведущий '+', остальное форматирование выкидывает.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}
	b := make([]byte, 0, len(phone))
	for i := 0; i < len(phone); i++ {
		c := phone[i]
		if c >= '0' && c <= '9' || (c == '+' && len(b) == 0) {
			b = append(b, c)
		}
	}
	return string(b)
}
