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

// ErrServiceNotFound возвращается, когда позиция каталога не найдена.
var ErrServiceNotFound = errors.New("catalog item not found")

// CatalogRepository отдаёт каталог eSIM планов и SMM услуг.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository создаёт экземпляр репозитория.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListESims возвращает доступные планы eSIM, опционально по стране.
func (r *CatalogRepository) ListESims(ctx context.Context, country string) ([]models.ESim, error) {
	var esims []models.ESim
	var err error
	if country != "" {
		err = r.db.SelectContext(ctx, &esims, `
			SELECT * FROM esims WHERE status = 'available' AND country_code = $1 ORDER BY price
		`, country)
	} else {
		err = r.db.SelectContext(ctx, &esims, `
			SELECT * FROM esims WHERE status = 'available' ORDER BY country, price
		`)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog repository: list esims %w", err)
	}
	return esims, nil
}

// GetESim возвращает план eSIM по идентификатору.
func (r *CatalogRepository) GetESim(ctx context.Context, id uuid.UUID) (*models.ESim, error) {
	return common.GetByID[models.ESim](ctx, r.db, "esims", id, ErrServiceNotFound)
}

// ListSMMServices возвращает услуги продвижения, опционально по платформе.
func (r *CatalogRepository) ListSMMServices(ctx context.Context, platform string) ([]models.SMMService, error) {
	var services []models.SMMService
	var err error
	if platform != "" {
		err = r.db.SelectContext(ctx, &services, `
			SELECT * FROM smm_services WHERE platform = $1 ORDER BY service_type, price_per_1000
		`, platform)
	} else {
		err = r.db.SelectContext(ctx, &services, `
			SELECT * FROM smm_services ORDER BY platform, service_type
		`)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog repository: list smm services %w", err)
	}
	return services, nil
}

// GetSMMService возвращает услугу по идентификатору.
func (r *CatalogRepository) GetSMMService(ctx context.Context, id uuid.UUID) (*models.SMMService, error) {
	return common.GetByID[models.SMMService](ctx, r.db, "smm_services", id, ErrServiceNotFound)
}
