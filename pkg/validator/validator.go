package validator

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{8,15}$`)
	rutRegex   = regexp.MustCompile(`^[0-9]{7,8}-[0-9Kk]$`)
)

func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

func ValidatePhone(phone string) bool {
	cleanPhone := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || r == '+' {
			return r
		}
		return -1
	}, phone)

	return phoneRegex.MatchString(cleanPhone)
}

// ValidateRUT проверяет чилийский RUT формата "12345678-5" по модулю 11.
func ValidateRUT(rut string) bool {
	cleaned := FormatRUT(rut)
	if !rutRegex.MatchString(cleaned) {
		return false
	}

	parts := strings.Split(cleaned, "-")
	body, verifier := parts[0], parts[1]

	sum := 0
	factor := 2
	for i := len(body) - 1; i >= 0; i-- {
		digit, _ := strconv.Atoi(string(body[i]))
		sum += digit * factor
		factor++
		if factor > 7 {
			factor = 2
		}
	}

	expected := 11 - sum%11
	switch expected {
	case 11:
		return verifier == "0"
	case 10:
		return strings.EqualFold(verifier, "K")
	default:
		return verifier == strconv.Itoa(expected)
	}
}

// FormatRUT приводит RUT к канонической форме: без точек, с дефисом
// перед контрольной цифрой.
func FormatRUT(rut string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || r == 'k' || r == 'K' {
			return r
		}
		return -1
	}, rut)

	if len(cleaned) < 2 {
		return cleaned
	}

	return cleaned[:len(cleaned)-1] + "-" + strings.ToUpper(cleaned[len(cleaned)-1:])
}

// FormatPhone приводит номер к формату E.164 с кодом Чили по умолчанию.
func FormatPhone(phone string) string {
	cleanPhone := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || r == '+' {
			return r
		}
		return -1
	}, phone)

	if strings.HasPrefix(cleanPhone, "+") {
		return cleanPhone
	}

	if strings.HasPrefix(cleanPhone, "56") {
		return "+" + cleanPhone
	}

	return "+56" + cleanPhone
}

func FormatName(name string) string {
	parts := strings.Fields(name)
	for i, part := range parts {
		if strings.Contains(part, "-") {
			subparts := strings.Split(part, "-")
			for j, subpart := range subparts {
				if len(subpart) > 0 {
					subparts[j] = strings.ToUpper(subpart[:1]) + strings.ToLower(subpart[1:])
				}
			}
			parts[i] = strings.Join(subparts, "-")
		} else if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + strings.ToLower(part[1:])
		}
	}

	return strings.Join(parts, " ")
}

func SanitizeString(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '<' || r == '>' || r == '&' || r == '"' || r == '\'' || r == '`' || r == ';' {
			return -1
		}
		return r
	}, s)
}
