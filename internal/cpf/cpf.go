// Package cpf содержит валидацию и форматирование CPF — налогового
// идентификатора, используемого как ключ клиента.
package cpf

import "strings"

const digitCount = 11

// Normalize удаляет из строки все символы, кроме цифр
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsValid проверяет, что после нормализации остается ровно 11 цифр.
// Контрольные цифры не проверяются.
func IsValid(s string) bool {
	return len(Normalize(s)) == digitCount
}

// Format приводит 11-значный CPF к виду 000.000.000-00.
// Строка неверной длины возвращается без изменений.
func Format(s string) string {
	digits := Normalize(s)
	if len(digits) != digitCount {
		return s
	}
	return digits[0:3] + "." + digits[3:6] + "." + digits[6:9] + "-" + digits[9:11]
}
