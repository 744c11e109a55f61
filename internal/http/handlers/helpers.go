package handlers

import "github.com/google/uuid"

// parseUUID парсит UUID из строки тела запроса.
func parseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}
