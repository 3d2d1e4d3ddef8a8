package services

import (
	"context"
	"time"

	"fanpulse/internal/models"
	"fanpulse/internal/repositories"
	"fanpulse/internal/validation"

	"go.uber.org/zap"
)

// pollService implements PollService
type pollService struct {
	pollRepo repositories.PollRepository
	logger   *zap.Logger
}

// NewPollService creates a new poll service
func NewPollService(pollRepo repositories.PollRepository, logger *zap.Logger) PollService {
	return &pollService{pollRepo: pollRepo, logger: logger}
}

// CreatePoll opens a new fan poll
func (s *pollService) CreatePoll(ctx context.Context, req *CreatePollRequest) (*models.Poll, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid poll", err)
	}

	poll := &models.Poll{
		Question: req.Question,
		IsOpen:   true,
		ClosesAt: req.ClosesAt,
	}
	for _, label := range req.Options {
		poll.Options = append(poll.Options, models.PollOption{Label: label})
	}
	if err := s.pollRepo.Create(ctx, poll); err != nil {
		s.logger.Error("failed to create poll", zap.Error(err))
		return nil, NewInternalError("failed to create poll")
	}
	return poll, nil
}

// ListPolls returns polls, optionally only open ones
func (s *pollService) ListPolls(ctx context.Context, openOnly bool, params models.PaginationParams) (*models.PaginatedResponse[*models.Poll], error) {
	page, err := s.pollRepo.List(ctx, openOnly, params)
	if err != nil {
		return nil, NewInternalError("failed to list polls")
	}
	return page, nil
}

// Vote records one vote per user per poll and returns the fresh results
func (s *pollService) Vote(ctx context.Context, pollID, optionID, userID int64) (*models.PollResults, error) {
	poll, err := s.pollRepo.GetByID(ctx, pollID)
	if err != nil {
		return nil, NewInternalError("failed to load poll")
	}
	if poll == nil {
		return nil, NewNotFoundError("poll not found")
	}
	if !poll.IsOpen || (poll.ClosesAt != nil && poll.ClosesAt.Before(time.Now())) {
		return nil, NewBusinessError("poll is closed", "POLL_CLOSED")
	}

	validOption := false
	for _, opt := range poll.Options {
		if opt.ID == optionID {
			validOption = true
			break
		}
	}
	if !validOption {
		return nil, NewValidationError("option does not belong to this poll", nil)
	}

	if err := s.pollRepo.Vote(ctx, pollID, optionID, userID); err != nil {
		if s.pollRepo.IsDuplicate(err) {
			return nil, NewConflictError("you have already voted in this poll", "ALREADY_VOTED")
		}
		s.logger.Error("failed to record vote", zap.Int64("poll_id", pollID), zap.Error(err))
		return nil, NewInternalError("failed to record vote")
	}

	return s.GetResults(ctx, pollID, &userID)
}

// GetResults returns the aggregated outcome of a poll
func (s *pollService) GetResults(ctx context.Context, pollID int64, userID *int64) (*models.PollResults, error) {
	poll, err := s.pollRepo.GetByID(ctx, pollID)
	if err != nil {
		return nil, NewInternalError("failed to load poll")
	}
	if poll == nil {
		return nil, NewNotFoundError("poll not found")
	}

	results := &models.PollResults{Poll: *poll}
	for _, opt := range poll.Options {
		results.TotalVotes += opt.VoteCount
	}
	if userID != nil {
		vote, err := s.pollRepo.GetUserVote(ctx, pollID, *userID)
		if err == nil && vote != nil {
			results.UserVote = vote
		}
	}
	return results, nil
}
