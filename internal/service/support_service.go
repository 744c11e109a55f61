package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/socialblast/backend/internal/models"
	"github.com/socialblast/backend/internal/pkg/apperror"
	"github.com/socialblast/backend/internal/repository"
	"github.com/socialblast/backend/internal/validation"
)

// SupportRepository описывает зависимости от слоя хранилища.
type SupportRepository interface {
	CreateTicket(ctx context.Context, ticket *models.SupportTicket) error
	GetTicket(ctx context.Context, id uuid.UUID) (*models.SupportTicket, error)
	ListTickets(ctx context.Context, userID uuid.UUID) ([]models.SupportTicket, error)
	ListAllTickets(ctx context.Context, status string) ([]models.SupportTicket, error)
	AddReply(ctx context.Context, reply *models.TicketReply) error
	ListReplies(ctx context.Context, ticketID uuid.UUID) ([]models.TicketReply, error)
	UpdateStatus(ctx context.Context, ticketID uuid.UUID, status string) error
}

// TicketThread — тикет вместе с его тредом.
type TicketThread struct {
	Ticket  *models.SupportTicket `json:"ticket"`
	Replies []models.TicketReply  `json:"replies"`
}

// SupportService — обращения пользователей в поддержку.
type SupportService struct {
	repo          SupportRepository
	notifications *NotificationService
}

// NewSupportService создаёт сервис поддержки.
func NewSupportService(repo SupportRepository, notifications *NotificationService) *SupportService {
	return &SupportService{
		repo:          repo,
		notifications: notifications,
	}
}

// CreateTicket создаёт новое обращение.
func (s *SupportService) CreateTicket(ctx context.Context, userID uuid.UUID, subject, message string) (*models.SupportTicket, error) {
	if err := validation.ValidateLength("тема", subject, validation.MinSubjectLength, validation.MaxSubjectLength); err != nil {
		return nil, fmt.Errorf("support service: %w", err)
	}
	if err := validation.ValidateLength("сообщение", message, validation.MinMessageLength, validation.MaxMessageLength); err != nil {
		return nil, fmt.Errorf("support service: %w", err)
	}

	ticket := &models.SupportTicket{
		UserID:  userID,
		Subject: subject,
		Message: message,
	}
	if err := s.repo.CreateTicket(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// ListTickets возвращает обращения пользователя.
func (s *SupportService) ListTickets(ctx context.Context, userID uuid.UUID) ([]models.SupportTicket, error) {
	return s.repo.ListTickets(ctx, userID)
}

// ListAllTickets возвращает обращения для админ-панели.
func (s *SupportService) ListAllTickets(ctx context.Context, status string) ([]models.SupportTicket, error) {
	return s.repo.ListAllTickets(ctx, status)
}

// GetThread возвращает тикет с тредом. Пользователь видит только свои
// тикеты, администратор — любые.
func (s *SupportService) GetThread(ctx context.Context, ticketID, userID uuid.UUID, isAdmin bool) (*TicketThread, error) {
	ticket, err := s.repo.GetTicket(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return nil, apperror.ErrTicketNotFound
		}
		return nil, err
	}
	if !isAdmin && ticket.UserID != userID {
		return nil, apperror.ErrTicketNotFound
	}

	replies, err := s.repo.ListReplies(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	return &TicketThread{Ticket: ticket, Replies: replies}, nil
}

// Reply добавляет сообщение в тред тикета.
func (s *SupportService) Reply(ctx context.Context, ticketID, authorID uuid.UUID, isAdmin bool, message string) (*models.TicketReply, error) {
	if err := validation.ValidateLength("сообщение", message, validation.MinMessageLength, validation.MaxMessageLength); err != nil {
		return nil, fmt.Errorf("support service: %w", err)
	}

	ticket, err := s.repo.GetTicket(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return nil, apperror.ErrTicketNotFound
		}
		return nil, err
	}
	if !isAdmin && ticket.UserID != authorID {
		return nil, apperror.ErrTicketNotFound
	}
	if ticket.Status == models.TicketStatusClosed {
		return nil, apperror.New(apperror.ErrCodeConflict, "тикет закрыт")
	}

	reply := &models.TicketReply{
		TicketID: ticketID,
		AuthorID: authorID,
		IsStaff:  isAdmin,
		Message:  message,
	}
	if err := s.repo.AddReply(ctx, reply); err != nil {
		return nil, err
	}

	// Уведомляем владельца тикета об ответе поддержки
	if s.notifications != nil && isAdmin {
		s.notifications.Notify(ticket.UserID, EventTicketReply, map[string]interface{}{
			"ticket_id": ticket.ID,
			"subject":   ticket.Subject,
		})
	}

	return reply, nil
}

// CloseTicket закрывает обращение.
func (s *SupportService) CloseTicket(ctx context.Context, ticketID, userID uuid.UUID, isAdmin bool) error {
	ticket, err := s.repo.GetTicket(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return apperror.ErrTicketNotFound
		}
		return err
	}
	if !isAdmin && ticket.UserID != userID {
		return apperror.ErrTicketNotFound
	}
	return s.repo.UpdateStatus(ctx, ticketID, models.TicketStatusClosed)
}
