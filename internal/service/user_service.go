package service

import (
	"context"

	"parking_system/internal/domain"
	"parking_system/internal/repository"

	"github.com/sirupsen/logrus"
)

// UserService covers admin-side user management. Deactivating a user does
// not close their reservations or revoke issued tokens.
type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.userRepo.FindAll(ctx)
}

func (s *UserService) SetActive(ctx context.Context, id int, active bool) (*domain.User, error) {
	if err := s.userRepo.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"user_id": id, "active": active}).Info("user status updated")
	return s.userRepo.FindByID(ctx, id)
}

func (s *UserService) Delete(ctx context.Context, id int) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	logrus.WithField("user_id", id).Info("user deleted")
	return nil
}
