package events

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/reindeer-games/backend/internal/errs"
	"github.com/reindeer-games/backend/internal/models"
	"github.com/reindeer-games/backend/internal/validation"
)

// ListResult distinguishes "not signed in" from a fetch failure, so the caller
// can render a sign-in prompt instead of an error banner.
type ListResult struct {
	Authenticated bool           `json:"authenticated"`
	Events        []models.Event `json:"events"`
}

// Service is the event flow controller.
type Service struct {
	repo   Repository
	cache  *ListCache // optional
	logger *zap.Logger
}

// NewService creates the event service. cache may be nil.
func NewService(repo Repository, cache *ListCache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, cache: cache, logger: logger}
}

// List returns all events newest-first for an authenticated caller, enriched
// with owner display names where the batch lookup resolves them.
func (s *Service) List(ctx context.Context, session *models.Session) (*ListResult, error) {
	if session == nil {
		return &ListResult{Authenticated: false, Events: []models.Event{}}, nil
	}

	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx); ok {
			return &ListResult{Authenticated: true, Events: cached}, nil
		}
	}

	list, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to fetch events",
			zap.String("operation", "list events"),
			zap.String("user_id", session.UserID()),
			zap.Error(err))
		return nil, errs.Upstream("Failed to fetch events. Please try again later.", err)
	}
	if list == nil {
		list = []models.Event{}
	}

	s.enrichOwnerNames(ctx, list)

	if s.cache != nil {
		s.cache.Set(ctx, list)
	}
	return &ListResult{Authenticated: true, Events: list}, nil
}

// Create validates, sanitizes, and persists a new event owned by the session
// user.
func (s *Service) Create(ctx context.Context, session *models.Session, name, description string) (*models.Event, error) {
	if session == nil {
		return nil, errs.Unauthenticated("You must be logged in to create events")
	}

	if res := validation.ValidateEventName(name); !res.Valid {
		return nil, errs.InvalidInput(res.Error)
	}
	if res := validation.ValidateEventDescription(description); !res.Valid {
		return nil, errs.InvalidInput(res.Error)
	}

	sanitizedName := validation.SanitizeString(name)
	sanitizedDescription := validation.SanitizeString(description)

	event, err := s.repo.Insert(ctx, session.UserID(), sanitizedName, sanitizedDescription)
	if err != nil {
		s.logger.Error("failed to create event",
			zap.String("operation", "create event"),
			zap.String("user_id", session.UserID()),
			zap.String("event_name", sanitizedName),
			zap.Error(err))
		return nil, errs.Upstream("Failed to create event. Please try again later.", err)
	}

	s.logger.Info("event created",
		zap.String("user_id", session.UserID()),
		zap.String("event_name", sanitizedName))

	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	return event, nil
}

// Delete removes an event after re-verifying ownership server-side: the stored
// owner id must equal the session user's id, regardless of what the client
// showed.
func (s *Service) Delete(ctx context.Context, session *models.Session, eventID string) error {
	if session == nil {
		return errs.Unauthenticated("You must be logged in to delete events")
	}
	if eventID == "" {
		return errs.InvalidInput("Event id is required")
	}

	ownerID, err := s.repo.GetOwner(ctx, eventID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return errs.NotFound("Event not found")
		}
		s.logger.Error("failed to fetch event owner",
			zap.String("operation", "delete event"),
			zap.String("user_id", session.UserID()),
			zap.String("event_id", eventID),
			zap.Error(err))
		return errs.Upstream("Failed to delete event. Please try again later.", err)
	}
	if ownerID != session.UserID() {
		return errs.Forbidden("You can only delete your own events")
	}

	if err := s.repo.Delete(ctx, eventID, session.UserID()); err != nil && !errors.Is(err, ErrNotFound) {
		s.logger.Error("failed to delete event",
			zap.String("operation", "delete event"),
			zap.String("user_id", session.UserID()),
			zap.String("event_id", eventID),
			zap.Error(err))
		return errs.Upstream("Failed to delete event. Please try again later.", err)
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	return nil
}

// enrichOwnerNames attaches display names via one batch lookup over the
// distinct owner ids. Failures are non-fatal; affected rows keep an empty
// owner name.
func (s *Service) enrichOwnerNames(ctx context.Context, list []models.Event) {
	if len(list) == 0 {
		return
	}
	seen := make(map[string]struct{}, len(list))
	ids := make([]string, 0, len(list))
	for _, e := range list {
		if _, ok := seen[e.UserID]; !ok {
			seen[e.UserID] = struct{}{}
			ids = append(ids, e.UserID)
		}
	}

	names, err := s.repo.LookupDisplayNames(ctx, ids)
	if err != nil {
		s.logger.Warn("display name lookup failed", zap.Error(err))
		return
	}
	for i := range list {
		list[i].OwnerName = names[list[i].UserID]
	}
}
