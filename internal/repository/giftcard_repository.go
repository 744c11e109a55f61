package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/socialblast/backend/internal/models"
)

var (
	// ErrCardNotFound возвращается, когда лот не найден.
	ErrCardNotFound = errors.New("gift card not found")
	// ErrItemNotAvailable возвращается проигравшему гонку за резервирование:
	// лот уже занят другим покупателем или снят с продажи.
	ErrItemNotAvailable = errors.New("item not available")
	// ErrInvalidTransition возвращается при недопустимом переходе статуса лота.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrOwnListing запрещает покупку собственного лота.
	ErrOwnListing = errors.New("cannot buy own listing")
	// ErrCodeNotRevealed возвращается при попытке прочитать код до завершения сделки.
	ErrCodeNotRevealed = errors.New("code not revealed")
)

// GiftCardRepository отвечает за каталог подарочных карт.
// Изменения статусов выполняет координатор сделок (EscrowRepository),
// здесь — листинг, создание лотов и выдача кода покупателю.
type GiftCardRepository struct {
	db *sqlx.DB
}

// NewGiftCardRepository создаёт экземпляр репозитория.
func NewGiftCardRepository(db *sqlx.DB) *GiftCardRepository {
	return &GiftCardRepository{db: db}
}

// List возвращает страницу лотов по фильтру. Секретный код не выбирается.
func (r *GiftCardRepository) List(ctx context.Context, filter models.GiftCardFilter) ([]models.GiftCard, error) {
	query := strings.Builder{}
	query.WriteString(`
		SELECT id, seller_id, seller_name, buyer_id, card_type, face_value, price, currency, status, '' AS code, created_at, sold_at
		FROM gift_cards
		WHERE 1=1
	`)

	args := []interface{}{}
	argN := 1

	status := filter.Status
	if status == "" {
		status = models.GiftCardStatusAvailable
	}
	query.WriteString(fmt.Sprintf(" AND status = $%d", argN))
	args = append(args, status)
	argN++

	if filter.CardType != "" {
		query.WriteString(fmt.Sprintf(" AND card_type = $%d", argN))
		args = append(args, filter.CardType)
		argN++
	}

	if filter.Query != "" {
		query.WriteString(fmt.Sprintf(" AND (card_type ILIKE $%d OR seller_name ILIKE $%d)", argN, argN))
		args = append(args, "%"+filter.Query+"%")
		argN++
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	query.WriteString(fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argN, argN+1))
	args = append(args, limit, filter.Offset)

	var cards []models.GiftCard
	if err := r.db.SelectContext(ctx, &cards, query.String(), args...); err != nil {
		return nil, fmt.Errorf("giftcard repository: list %w", err)
	}
	return cards, nil
}

// Create публикует новый лот со статусом available.
func (r *GiftCardRepository) Create(ctx context.Context, card *models.GiftCard) error {
	query := `
		INSERT INTO gift_cards (seller_id, seller_name, card_type, face_value, price, currency, status, code)
		VALUES ($1, $2, $3, $4, $5, $6, 'available', $7)
		RETURNING id, status, created_at
	`
	if err := r.db.QueryRowxContext(
		ctx, query,
		card.SellerID, card.SellerName, card.CardType, card.FaceValue, card.Price, card.Currency, card.Code,
	).Scan(&card.ID, &card.Status, &card.CreatedAt); err != nil {
		return fmt.Errorf("giftcard repository: create %w", err)
	}
	return nil
}

// GetByID возвращает лот вместе с секретным кодом (код не сериализуется в JSON).
func (r *GiftCardRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.GiftCard, error) {
	var card models.GiftCard
	err := r.db.GetContext(ctx, &card, `SELECT * FROM gift_cards WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("giftcard repository: get by id %w", err)
	}
	return &card, nil
}

// ListBySeller возвращает лоты продавца в любом статусе.
func (r *GiftCardRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.GiftCard, error) {
	var cards []models.GiftCard
	err := r.db.SelectContext(ctx, &cards, `
		SELECT id, seller_id, seller_name, buyer_id, card_type, face_value, price, currency, status, '' AS code, created_at, sold_at
		FROM gift_cards WHERE seller_id = $1 ORDER BY created_at DESC
	`, sellerID)
	if err != nil {
		return nil, fmt.Errorf("giftcard repository: list by seller %w", err)
	}
	return cards, nil
}

// RevealCode выдаёт код карты. Доступен только покупателю после завершения сделки.
func (r *GiftCardRepository) RevealCode(ctx context.Context, cardID, buyerID uuid.UUID) (string, error) {
	card, err := r.GetByID(ctx, cardID)
	if err != nil {
		return "", err
	}
	if card.Status != models.GiftCardStatusSold || card.BuyerID == nil || *card.BuyerID != buyerID {
		return "", ErrCodeNotRevealed
	}
	return card.Code, nil
}
