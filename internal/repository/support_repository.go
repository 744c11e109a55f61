package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/socialblast/backend/internal/models"
	"github.com/socialblast/backend/internal/repository/common"
)

// ErrTicketNotFound возвращается, когда тикет не найден.
var ErrTicketNotFound = errors.New("ticket not found")

// SupportRepository отвечает за тикеты поддержки и их треды.
type SupportRepository struct {
	db *sqlx.DB
}

// NewSupportRepository создаёт экземпляр репозитория.
func NewSupportRepository(db *sqlx.DB) *SupportRepository {
	return &SupportRepository{db: db}
}

// CreateTicket создаёт новое обращение в статусе open.
func (r *SupportRepository) CreateTicket(ctx context.Context, ticket *models.SupportTicket) error {
	query := `
		INSERT INTO support_tickets (user_id, subject, message, status)
		VALUES ($1, $2, $3, 'open')
		RETURNING id, status, created_at, updated_at
	`
	if err := r.db.QueryRowxContext(
		ctx, query,
		ticket.UserID, ticket.Subject, ticket.Message,
	).Scan(&ticket.ID, &ticket.Status, &ticket.CreatedAt, &ticket.UpdatedAt); err != nil {
		return fmt.Errorf("support repository: create ticket %w", err)
	}
	return nil
}

// GetTicket возвращает тикет по идентификатору.
func (r *SupportRepository) GetTicket(ctx context.Context, id uuid.UUID) (*models.SupportTicket, error) {
	return common.GetByID[models.SupportTicket](ctx, r.db, "support_tickets", id, ErrTicketNotFound)
}

// ListTickets возвращает обращения пользователя, новые первыми.
func (r *SupportRepository) ListTickets(ctx context.Context, userID uuid.UUID) ([]models.SupportTicket, error) {
	var tickets []models.SupportTicket
	err := r.db.SelectContext(ctx, &tickets, `
		SELECT * FROM support_tickets WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("support repository: list tickets %w", err)
	}
	return tickets, nil
}

// ListAllTickets возвращает все обращения для админ-панели.
func (r *SupportRepository) ListAllTickets(ctx context.Context, status string) ([]models.SupportTicket, error) {
	var tickets []models.SupportTicket
	var err error
	if status != "" {
		err = r.db.SelectContext(ctx, &tickets, `
			SELECT * FROM support_tickets WHERE status = $1 ORDER BY created_at DESC
		`, status)
	} else {
		err = r.db.SelectContext(ctx, &tickets, `
			SELECT * FROM support_tickets ORDER BY created_at DESC
		`)
	}
	if err != nil {
		return nil, fmt.Errorf("support repository: list all tickets %w", err)
	}
	return tickets, nil
}

// AddReply добавляет сообщение в тред тикета и обновляет updated_at.
// Если отвечает сотрудник, тикет переходит в in_progress.
func (r *SupportRepository) AddReply(ctx context.Context, reply *models.TicketReply) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO ticket_replies (ticket_id, author_id, is_staff, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	if err := tx.QueryRowxContext(
		ctx, query,
		reply.TicketID, reply.AuthorID, reply.IsStaff, reply.Message,
	).Scan(&reply.ID, &reply.CreatedAt); err != nil {
		return fmt.Errorf("support repository: add reply %w", err)
	}

	if reply.IsStaff {
		_, err = tx.ExecContext(ctx, `
			UPDATE support_tickets SET status = 'in_progress', updated_at = NOW()
			WHERE id = $1 AND status = 'open'
		`, reply.TicketID)
	} else {
		_, err = tx.ExecContext(ctx, `
			UPDATE support_tickets SET updated_at = NOW() WHERE id = $1
		`, reply.TicketID)
	}
	if err != nil {
		return fmt.Errorf("support repository: touch ticket %w", err)
	}

	return tx.Commit()
}

// ListReplies возвращает тред тикета в хронологическом порядке.
func (r *SupportRepository) ListReplies(ctx context.Context, ticketID uuid.UUID) ([]models.TicketReply, error) {
	var replies []models.TicketReply
	err := r.db.SelectContext(ctx, &replies, `
		SELECT * FROM ticket_replies WHERE ticket_id = $1 ORDER BY created_at
	`, ticketID)
	if err != nil {
		return nil, fmt.Errorf("support repository: list replies %w", err)
	}
	return replies, nil
}

// UpdateStatus меняет статус тикета.
func (r *SupportRepository) UpdateStatus(ctx context.Context, ticketID uuid.UUID, status string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE support_tickets SET status = $2, updated_at = NOW() WHERE id = $1
	`, ticketID, status)
	if err != nil {
		return fmt.Errorf("support repository: update status %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("support repository: update status %w", err)
	}
	if rows == 0 {
		return ErrTicketNotFound
	}
	return nil
}
