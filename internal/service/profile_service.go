package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/socialblast/backend/internal/models"
	"github.com/socialblast/backend/internal/pkg/apperror"
	"github.com/socialblast/backend/internal/repository"
	"github.com/socialblast/backend/internal/storage"
	"github.com/socialblast/backend/internal/validation"
)

// ProfileRepository описывает зависимости от слоя хранилища.
type ProfileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	UpsertProfile(ctx context.Context, profile *models.Profile) error
}

// UpdateProfileInput — изменяемые поля профиля.
type UpdateProfileInput struct {
	DisplayName string
	Phone       *string
	Telegram    *string
}

// ProfileService — личный кабинет пользователя.
type ProfileService struct {
	repo  ProfileRepository
	media *storage.MediaStorage
}

// NewProfileService создаёт сервис профилей.
func NewProfileService(repo ProfileRepository, media *storage.MediaStorage) *ProfileService {
	return &ProfileService{
		repo:  repo,
		media: media,
	}
}

// Get возвращает профиль пользователя.
func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, err
	}
	return profile, nil
}

// Update обновляет профиль пользователя.
func (s *ProfileService) Update(ctx context.Context, userID uuid.UUID, in UpdateProfileInput) (*models.Profile, error) {
	if err := validation.ValidateDisplayName(in.DisplayName); err != nil {
		return nil, fmt.Errorf("profile service: %w", err)
	}

	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		profile = &models.Profile{UserID: userID}
	}

	profile.DisplayName = in.DisplayName
	profile.Phone = in.Phone
	profile.Telegram = in.Telegram

	if err := s.repo.UpsertProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// SaveAvatar сохраняет новый аватар и обновляет профиль.
func (s *ProfileService) SaveAvatar(ctx context.Context, userID uuid.UUID, fileName string, r io.Reader) (*models.Profile, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		profile = &models.Profile{UserID: userID}
		if user, userErr := s.repo.GetByID(ctx, userID); userErr == nil {
			profile.DisplayName = user.Username
		}
	}

	path, _, err := s.media.Save(ctx, userID, fileName, r)
	if err != nil {
		return nil, err
	}

	// Прежний аватар удаляем после успешной записи нового
	oldPath := profile.AvatarPath
	profile.AvatarPath = &path
	if err := s.repo.UpsertProfile(ctx, profile); err != nil {
		_ = s.media.Delete(ctx, path)
		return nil, err
	}
	if oldPath != nil {
		_ = s.media.Delete(ctx, *oldPath)
	}

	return profile, nil
}
