package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/socialblast/backend/internal/http/handlers/common"
	"github.com/socialblast/backend/internal/service"
)

type CatalogHandler struct {
	purchases *service.PurchaseService
}

func NewCatalogHandler(purchases *service.PurchaseService) *CatalogHandler {
	return &CatalogHandler{purchases: purchases}
}

// ListESims GET /esims
func (h *CatalogHandler) ListESims(c *gin.Context) {
	esims, err := h.purchases.ListESims(c.Request.Context(), c.Query("country"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"esims": esims})
}

// BuyESim POST /esims/:id/buy
func (h *CatalogHandler) BuyESim(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	esimID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	order, err := h.purchases.BuyESim(c.Request.Context(), esimID, userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// ListSMMServices GET /smm/services
func (h *CatalogHandler) ListSMMServices(c *gin.Context) {
	services, err := h.purchases.ListSMMServices(c.Request.Context(), c.Query("platform"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"services": services})
}

// OrderSMM POST /smm/orders
func (h *CatalogHandler) OrderSMM(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req struct {
		ServiceID string `json:"service_id" binding:"required,uuid"`
		Quantity  int    `json:"quantity" binding:"required,gt=0"`
		Link      string `json:"link" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "service_id, quantity и link обязательны")
		return
	}

	serviceID, err := parseUUID(req.ServiceID)
	if err != nil {
		common.RespondBadRequest(c, "неверный service_id")
		return
	}

	order, err := h.purchases.OrderSMM(c.Request.Context(), userID, serviceID, req.Quantity, req.Link)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// FinalizeSMM POST /admin/smm/orders/:id/finalize — завершение SMM заказа.
func (h *CatalogHandler) FinalizeSMM(c *gin.Context) {
	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req struct {
		Status string `json:"status" binding:"required,oneof=completed failed"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "status должен быть completed или failed")
		return
	}

	order, err := h.purchases.FinalizeSMM(c.Request.Context(), orderID, req.Status)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, order)
}
