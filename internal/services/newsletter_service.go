package services

import (
	"context"
	"net/mail"
	"strings"

	"fanpulse/internal/models"
	"fanpulse/internal/repositories"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// newsletterService implements NewsletterService
type newsletterService struct {
	newsletterRepo repositories.NewsletterRepository
	logger         *zap.Logger
}

// NewNewsletterService creates a new newsletter service
func NewNewsletterService(newsletterRepo repositories.NewsletterRepository, logger *zap.Logger) NewsletterService {
	return &newsletterService{newsletterRepo: newsletterRepo, logger: logger}
}

// Subscribe adds an email to the list and issues a confirmation token.
// Subscribing an address that is already on the list is a conflict.
func (s *newsletterService) Subscribe(ctx context.Context, email string) (*models.NewsletterSubscription, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, NewValidationError("invalid email address", err)
	}

	token, err := uuid.NewV4()
	if err != nil {
		return nil, NewInternalError("failed to generate confirmation token")
	}

	sub := &models.NewsletterSubscription{
		Email:        email,
		ConfirmToken: token.String(),
	}
	if err := s.newsletterRepo.Create(ctx, sub); err != nil {
		if s.newsletterRepo.IsDuplicate(err) {
			return nil, NewConflictError("this email is already subscribed", "ALREADY_SUBSCRIBED")
		}
		s.logger.Error("failed to create subscription", zap.Error(err))
		return nil, NewInternalError("failed to subscribe")
	}

	s.logger.Info("newsletter subscription created", zap.Int64("subscription_id", sub.ID))
	return sub, nil
}

// Confirm completes the double opt-in for a token
func (s *newsletterService) Confirm(ctx context.Context, token string) error {
	if token == "" {
		return NewValidationError("confirmation token is required", nil)
	}
	confirmed, err := s.newsletterRepo.ConfirmByToken(ctx, token)
	if err != nil {
		return NewInternalError("failed to confirm subscription")
	}
	if !confirmed {
		return NewNotFoundError("unknown confirmation token")
	}
	return nil
}

// Unsubscribe removes an email from the list; unknown addresses succeed
// silently so the endpoint leaks nothing about who is subscribed.
func (s *newsletterService) Unsubscribe(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return NewValidationError("invalid email address", err)
	}
	if err := s.newsletterRepo.DeleteByEmail(ctx, email); err != nil {
		return NewInternalError("failed to unsubscribe")
	}
	return nil
}
