package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/socialblast/backend/internal/logger"
	"github.com/socialblast/backend/internal/pkg/apperror"
	"github.com/socialblast/backend/internal/repository"
)

// ErrorHandler обрабатывает ошибки централизованно.
// Маскирует внутренние ошибки и возвращает понятные сообщения клиенту.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		if logger.Log != nil {
			logger.Log.WithFields(logrus.Fields{
				"error":  err.Error(),
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
			}).Error("Request error")
		}

		statusCode, message := mapError(err)
		c.JSON(statusCode, gin.H{"error": message})
	}
}

// mapError переводит ошибку в HTTP статус и сообщение для клиента.
func mapError(err error) (int, string) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus, appErr.Message
	}

	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return http.StatusNotFound, "пользователь не найден"
	case errors.Is(err, repository.ErrOrderNotFound):
		return http.StatusNotFound, "заказ не найден"
	case errors.Is(err, repository.ErrCardNotFound):
		return http.StatusNotFound, "подарочная карта не найдена"
	case errors.Is(err, repository.ErrTicketNotFound):
		return http.StatusNotFound, "тикет не найден"
	case errors.Is(err, repository.ErrServiceNotFound):
		return http.StatusNotFound, "позиция каталога не найдена"
	case errors.Is(err, repository.ErrInsufficientFunds):
		return http.StatusPaymentRequired, "недостаточно средств на балансе"
	case errors.Is(err, repository.ErrItemNotAvailable):
		return http.StatusConflict, "позиция уже продана или зарезервирована"
	case errors.Is(err, repository.ErrAlreadyFinalized):
		return http.StatusConflict, "заказ уже завершён"
	case errors.Is(err, repository.ErrInvalidTransition):
		return http.StatusConflict, "недопустимый переход статуса"
	case errors.Is(err, repository.ErrOwnListing):
		return http.StatusBadRequest, "нельзя купить собственную карту"
	}

	// Сообщения валидации и бизнес-правил отдаём как есть
	errStr := err.Error()
	if !containsInternalKeywords(errStr) {
		statusCode := http.StatusBadRequest
		if contains(errStr, "нет прав") || contains(errStr, "не авторизован") {
			statusCode = http.StatusForbidden
		}
		return statusCode, errStr
	}

	return http.StatusInternalServerError, "внутренняя ошибка сервера"
}

// containsInternalKeywords проверяет, содержит ли строка ключевые слова внутренних ошибок.
func containsInternalKeywords(s string) bool {
	keywords := []string{
		"sql:",
		"database",
		"connection",
		"timeout",
		"internal",
		"panic",
		"runtime",
	}

	for _, keyword := range keywords {
		if contains(s, keyword) {
			return true
		}
	}
	return false
}

// contains проверяет, содержит ли строка подстроку (case-insensitive).
func contains(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
