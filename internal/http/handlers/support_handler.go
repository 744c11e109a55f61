package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/socialblast/backend/internal/http/handlers/common"
	"github.com/socialblast/backend/internal/service"
)

type SupportHandler struct {
	support *service.SupportService
}

func NewSupportHandler(support *service.SupportService) *SupportHandler {
	return &SupportHandler{support: support}
}

// CreateTicket POST /support/tickets
func (h *SupportHandler) CreateTicket(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req struct {
		Subject string `json:"subject" binding:"required"`
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "тема и сообщение обязательны")
		return
	}

	ticket, err := h.support.CreateTicket(c.Request.Context(), userID, req.Subject, req.Message)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, ticket)
}

// ListTickets GET /support/tickets
func (h *SupportHandler) ListTickets(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	tickets, err := h.support.ListTickets(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tickets": tickets})
}

// ListAllTickets GET /admin/support/tickets
func (h *SupportHandler) ListAllTickets(c *gin.Context) {
	tickets, err := h.support.ListAllTickets(c.Request.Context(), c.Query("status"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tickets": tickets})
}

// GetThread GET /support/tickets/:id
func (h *SupportHandler) GetThread(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	ticketID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	thread, err := h.support.GetThread(c.Request.Context(), ticketID, userID, common.IsAdmin(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, thread)
}

// Reply POST /support/tickets/:id/replies
func (h *SupportHandler) Reply(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	ticketID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "сообщение обязательно")
		return
	}

	reply, err := h.support.Reply(c.Request.Context(), ticketID, userID, common.IsAdmin(c), req.Message)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, reply)
}

// CloseTicket POST /support/tickets/:id/close
func (h *SupportHandler) CloseTicket(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	ticketID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.support.CloseTicket(c.Request.Context(), ticketID, userID, common.IsAdmin(c)); err != nil {
		c.Error(err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "тикет закрыт", nil)
}
