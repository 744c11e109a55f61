package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/socialblast/backend/internal/http/handlers/common"
	"github.com/socialblast/backend/internal/service"
)

type PhoneHandler struct {
	phones *service.PhoneService
}

func NewPhoneHandler(phones *service.PhoneService) *PhoneHandler {
	return &PhoneHandler{phones: phones}
}

// Prices GET /phones/prices — прайс провайдера как есть.
func (h *PhoneHandler) Prices(c *gin.Context) {
	prices, err := h.phones.Prices(c.Request.Context(), c.Query("country"), c.Query("product"))
	if err != nil {
		c.Error(err)
		return
	}

	c.Data(http.StatusOK, "application/json", prices)
}

// Activations GET /admin/phones/activations — история активаций на аккаунте провайдера.
func (h *PhoneHandler) Activations(c *gin.Context) {
	activations, err := h.phones.Activations(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, activations)
}

// ProviderBalance GET /admin/phones/balance — баланс реселлерского аккаунта.
func (h *PhoneHandler) ProviderBalance(c *gin.Context) {
	profile, err := h.phones.ProviderProfile(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// Rent POST /phones/rent
func (h *PhoneHandler) Rent(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req struct {
		Country  string `json:"country" binding:"required"`
		Operator string `json:"operator"`
		Product  string `json:"product" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "country и product обязательны")
		return
	}

	number, err := h.phones.Rent(c.Request.Context(), userID, req.Country, req.Operator, req.Product)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, number)
}

// Check GET /phones/:id — состояние активации и SMS.
func (h *PhoneHandler) Check(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	number, err := h.phones.Check(c.Request.Context(), userID, orderID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, number)
}

// Finish POST /phones/:id/finish
func (h *PhoneHandler) Finish(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	number, err := h.phones.Finish(c.Request.Context(), userID, orderID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, number)
}

// Cancel POST /phones/:id/cancel
func (h *PhoneHandler) Cancel(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	number, err := h.phones.Cancel(c.Request.Context(), userID, orderID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, number)
}
