package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Константы валидации
const (
	MinUsernameLength    = 3
	MaxUsernameLength    = 30
	MinDisplayNameLength = 2
	MaxDisplayNameLength = 100
	MinSubjectLength     = 3
	MaxSubjectLength     = 200
	MinMessageLength     = 1
	MaxMessageLength     = 5000
	MaxCardTypeLength    = 50
	MaxCodeLength        = 500
	MinAmount            = 0.0
	MaxAmount            = 1000000.0 // миллион в валюте кошелька
	MaxLinkLength        = 500
)

var usernameRe = regexp.MustCompile(`^[a-z0-9_]+$`)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	email = strings.ToLower(strings.TrimSpace(email))

	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return fmt.Errorf("некорректный формат email")
	}
	if !strings.Contains(email[at+1:], ".") {
		return fmt.Errorf("некорректный формат email")
	}
	if utf8.RuneCountInString(email) > 254 {
		return fmt.Errorf("email слишком длинный")
	}

	return nil
}

// ValidateUsername проверяет имя пользователя.
func ValidateUsername(username string) error {
	if err := ValidateLength("username", username, MinUsernameLength, MaxUsernameLength); err != nil {
		return err
	}
	if !usernameRe.MatchString(username) {
		return fmt.Errorf("username может содержать только строчные буквы, цифры и подчёркивания")
	}
	return nil
}

// ValidateDisplayName проверяет отображаемое имя.
func ValidateDisplayName(name string) error {
	return ValidateLength("имя", strings.TrimSpace(name), MinDisplayNameLength, MaxDisplayNameLength)
}

// ValidateAmount проверяет денежную сумму.
func ValidateAmount(amount float64) error {
	if amount <= MinAmount {
		return fmt.Errorf("сумма должна быть положительной")
	}
	if amount > MaxAmount {
		return fmt.Errorf("сумма превышает допустимый максимум")
	}
	return nil
}

// ValidateLink проверяет ссылку на пост/профиль для SMM заказа.
func ValidateLink(link string) error {
	if link == "" {
		return fmt.Errorf("ссылка обязательна")
	}
	if utf8.RuneCountInString(link) > MaxLinkLength {
		return fmt.Errorf("ссылка слишком длинная")
	}
	parsed, err := url.Parse(link)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("некорректная ссылка")
	}
	return nil
}
