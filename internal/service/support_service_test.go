package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/socialblast/backend/internal/models"
	"github.com/socialblast/backend/internal/pkg/apperror"
)

type mockSupportRepo struct {
	mock.Mock
}

func (m *mockSupportRepo) CreateTicket(ctx context.Context, ticket *models.SupportTicket) error {
	args := m.Called(ctx, ticket)
	ticket.ID = uuid.New()
	ticket.Status = models.TicketStatusOpen
	return args.Error(0)
}

func (m *mockSupportRepo) GetTicket(ctx context.Context, id uuid.UUID) (*models.SupportTicket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SupportTicket), args.Error(1)
}

func (m *mockSupportRepo) ListTickets(ctx context.Context, userID uuid.UUID) ([]models.SupportTicket, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.SupportTicket), args.Error(1)
}

func (m *mockSupportRepo) ListAllTickets(ctx context.Context, status string) ([]models.SupportTicket, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]models.SupportTicket), args.Error(1)
}

func (m *mockSupportRepo) AddReply(ctx context.Context, reply *models.TicketReply) error {
	args := m.Called(ctx, reply)
	reply.ID = uuid.New()
	return args.Error(0)
}

func (m *mockSupportRepo) ListReplies(ctx context.Context, ticketID uuid.UUID) ([]models.TicketReply, error) {
	args := m.Called(ctx, ticketID)
	return args.Get(0).([]models.TicketReply), args.Error(1)
}

func (m *mockSupportRepo) UpdateStatus(ctx context.Context, ticketID uuid.UUID, status string) error {
	args := m.Called(ctx, ticketID, status)
	return args.Error(0)
}

func TestSupportService_CreateTicket_Success(t *testing.T) {
	repo := new(mockSupportRepo)
	svc := NewSupportService(repo, nil)
	ctx := context.Background()
	userID := uuid.New()

	repo.On("CreateTicket", ctx, mock.Anything).Return(nil)

	ticket, err := svc.CreateTicket(ctx, userID, "Не пришла SMS", "Арендовал номер, SMS не приходит уже час")
	assert.NoError(t, err)
	assert.Equal(t, userID, ticket.UserID)
	assert.Equal(t, models.TicketStatusOpen, ticket.Status)
}

func TestSupportService_CreateTicket_ShortSubject(t *testing.T) {
	repo := new(mockSupportRepo)
	svc := NewSupportService(repo, nil)
	ctx := context.Background()

	_, err := svc.CreateTicket(ctx, uuid.New(), "Hi", "Текст обращения")
	assert.Error(t, err)
	repo.AssertNotCalled(t, "CreateTicket")
}

func TestSupportService_GetThread_ForeignTicket(t *testing.T) {
	repo := new(mockSupportRepo)
	svc := NewSupportService(repo, nil)
	ctx := context.Background()

	ticketID := uuid.New()
	repo.On("GetTicket", ctx, ticketID).Return(&models.SupportTicket{ID: ticketID, UserID: uuid.New()}, nil)

	_, err := svc.GetThread(ctx, ticketID, uuid.New(), false)
	assert.True(t, apperror.IsNotFound(err))
	repo.AssertNotCalled(t, "ListReplies")
}

func TestSupportService_GetThread_AdminSeesAny(t *testing.T) {
	repo := new(mockSupportRepo)
	svc := NewSupportService(repo, nil)
	ctx := context.Background()

	ticketID := uuid.New()
	ticket := &models.SupportTicket{ID: ticketID, UserID: uuid.New(), Subject: "Вопрос"}
	repo.On("GetTicket", ctx, ticketID).Return(ticket, nil)
	repo.On("ListReplies", ctx, ticketID).Return([]models.TicketReply{{ID: uuid.New()}}, nil)

	thread, err := svc.GetThread(ctx, ticketID, uuid.New(), true)
	assert.NoError(t, err)
	assert.Equal(t, ticket, thread.Ticket)
	assert.Len(t, thread.Replies, 1)
}

func TestSupportService_Reply_ClosedTicket(t *testing.T) {
	repo := new(mockSupportRepo)
	svc := NewSupportService(repo, nil)
	ctx := context.Background()

	ticketID := uuid.New()
	userID := uuid.New()
	repo.On("GetTicket", ctx, ticketID).Return(&models.SupportTicket{
		ID:     ticketID,
		UserID: userID,
		Status: models.TicketStatusClosed,
	}, nil)

	_, err := svc.Reply(ctx, ticketID, userID, false, "Ещё вопрос")
	assert.True(t, apperror.IsConflict(err))
	repo.AssertNotCalled(t, "AddReply")
}

func TestSupportService_Reply_StaffFlag(t *testing.T) {
	repo := new(mockSupportRepo)
	svc := NewSupportService(repo, nil)
	ctx := context.Background()

	ticketID := uuid.New()
	adminID := uuid.New()
	repo.On("GetTicket", ctx, ticketID).Return(&models.SupportTicket{
		ID:     ticketID,
		UserID: uuid.New(),
		Status: models.TicketStatusOpen,
	}, nil)
	repo.On("AddReply", ctx, mock.MatchedBy(func(r *models.TicketReply) bool {
		return r.IsStaff && r.AuthorID == adminID
	})).Return(nil)

	reply, err := svc.Reply(ctx, ticketID, adminID, true, "Проверили, номер активен")
	assert.NoError(t, err)
	assert.True(t, reply.IsStaff)
}

func TestSupportService_CloseTicket_OwnerOnly(t *testing.T) {
	repo := new(mockSupportRepo)
	svc := NewSupportService(repo, nil)
	ctx := context.Background()

	ticketID := uuid.New()
	ownerID := uuid.New()
	repo.On("GetTicket", ctx, ticketID).Return(&models.SupportTicket{ID: ticketID, UserID: ownerID}, nil)
	repo.On("UpdateStatus", ctx, ticketID, models.TicketStatusClosed).Return(nil)

	err := svc.CloseTicket(ctx, ticketID, ownerID, false)
	assert.NoError(t, err)

	err = svc.CloseTicket(ctx, ticketID, uuid.New(), false)
	assert.True(t, apperror.IsNotFound(err))
}
