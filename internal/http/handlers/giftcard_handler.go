package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/socialblast/backend/internal/http/handlers/common"
	"github.com/socialblast/backend/internal/models"
	"github.com/socialblast/backend/internal/service"
)

type GiftCardHandler struct {
	cards  *service.GiftCardService
	escrow *service.EscrowService
}

func NewGiftCardHandler(cards *service.GiftCardService, escrow *service.EscrowService) *GiftCardHandler {
	return &GiftCardHandler{cards: cards, escrow: escrow}
}

// List GET /giftcards
func (h *GiftCardHandler) List(c *gin.Context) {
	limit, offset := common.GetPagination(c)
	filter := models.GiftCardFilter{
		CardType: c.Query("card_type"),
		Query:    c.Query("q"),
		Status:   c.Query("status"),
		Limit:    limit,
		Offset:   offset,
	}

	cards, err := h.cards.List(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cards": cards})
}

// Create POST /giftcards
func (h *GiftCardHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req struct {
		CardType   string  `json:"card_type" binding:"required"`
		FaceValue  float64 `json:"face_value" binding:"required,gt=0"`
		Price      float64 `json:"price" binding:"required,gt=0"`
		Currency   string  `json:"currency"`
		Code       string  `json:"code" binding:"required"`
		SellerName string  `json:"seller_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "тип карты, номинал, цена и код обязательны")
		return
	}

	card, err := h.cards.CreateListing(c.Request.Context(), service.CreateListingInput{
		SellerID:   userID,
		SellerName: req.SellerName,
		CardType:   req.CardType,
		FaceValue:  req.FaceValue,
		Price:      req.Price,
		Currency:   req.Currency,
		Code:       req.Code,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, card)
}

// Get GET /giftcards/:id
func (h *GiftCardHandler) Get(c *gin.Context) {
	cardID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	card, err := h.cards.Get(c.Request.Context(), cardID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, card)
}

// MyListings GET /giftcards/my
func (h *GiftCardHandler) MyListings(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	cards, err := h.cards.MyListings(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cards": cards})
}

// Buy POST /giftcards/:id/buy — резервирование с переводом средств в escrow.
func (h *GiftCardHandler) Buy(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	cardID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	order, err := h.escrow.BuyCard(c.Request.Context(), cardID, userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// RevealCode GET /giftcards/:id/code — код карты для покупателя.
func (h *GiftCardHandler) RevealCode(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	cardID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	code, err := h.cards.RevealCode(c.Request.Context(), cardID, userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": code})
}

// ConfirmSale POST /giftcards/orders/:id/confirm — продавец подтверждает сделку.
func (h *GiftCardHandler) ConfirmSale(c *gin.Context) {
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

	order, err := h.escrow.ConfirmSale(c.Request.Context(), orderID, userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// OpenDispute POST /giftcards/orders/:id/dispute
func (h *GiftCardHandler) OpenDispute(c *gin.Context) {
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

	order, err := h.escrow.OpenDispute(c.Request.Context(), orderID, userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// ResolveDispute POST /admin/disputes/:id/resolve — решение администратора.
func (h *GiftCardHandler) ResolveDispute(c *gin.Context) {
	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req struct {
		Outcome string `json:"outcome" binding:"required,oneof=release refund"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "outcome должен быть release или refund")
		return
	}

	order, err := h.escrow.ResolveDispute(c.Request.Context(), orderID, req.Outcome)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, order)
}
