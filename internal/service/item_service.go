package service

import (
	"context"
	"fmt"
	"time"

	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type ItemService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewItemService(repo domain.Repository, eventBus domain.EventPublisher, logger *zerolog.Logger) *ItemService {
	return &ItemService{repo: repo, eventBus: eventBus, logger: logger}
}

func (s *ItemService) Create(ctx context.Context, ownerID int64, item *models.Item) (*models.Item, error) {
	exists, err := s.repo.UserExists(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("user %d: %w", ownerID, domain.ErrNotFound)
	}

	item.OwnerID = ownerID
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("item_id", item.ID).Int64("owner_id", ownerID).Msg("item created")
	return item, nil
}

// ItemPatch carries the optional fields of a partial item update.
type ItemPatch struct {
	Name        *string
	Description *string
	Available   *bool
}

// Update merges the patch into the stored item. Only the owner may update.
func (s *ItemService) Update(ctx context.Context, ownerID, itemID int64, patch ItemPatch) (*models.Item, error) {
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != ownerID {
		return nil, fmt.Errorf("only the owner may update the item: %w", domain.ErrForbidden)
	}

	if patch.Name != nil && *patch.Name != "" {
		item.Name = *patch.Name
	}
	if patch.Description != nil && *patch.Description != "" {
		item.Description = *patch.Description
	}
	if patch.Available != nil {
		item.Available = *patch.Available
	}

	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

// Get returns the item with its comments. Booking dates are populated only
// for the owner's view.
func (s *ItemService) Get(ctx context.Context, userID, itemID int64) (*models.Item, error) {
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	comments, err := s.repo.GetCommentsByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	item.Comments = comments

	if item.OwnerID == userID {
		dates, err := s.repo.GetBookingDates(ctx, item.OwnerID, time.Now())
		if err != nil {
			return nil, err
		}
		if bd, ok := dates[item.ID]; ok {
			item.LastBooking = bd.LastBooking
			item.NextBooking = bd.NextBooking
		}
	}

	return item, nil
}

// ListByOwner returns the owner's items decorated with last/next booking
// starts (one aggregate pass) and comments.
func (s *ItemService) ListByOwner(ctx context.Context, ownerID int64) ([]models.Item, error) {
	items, err := s.repo.GetItemsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return items, nil
	}

	dates, err := s.repo.GetBookingDates(ctx, ownerID, time.Now())
	if err != nil {
		return nil, err
	}

	itemIDs := make([]int64, len(items))
	for i, item := range items {
		itemIDs[i] = item.ID
	}
	comments, err := s.repo.GetCommentsByItems(ctx, itemIDs)
	if err != nil {
		return nil, err
	}

	for i := range items {
		if bd, ok := dates[items[i].ID]; ok {
			items[i].LastBooking = bd.LastBooking
			items[i].NextBooking = bd.NextBooking
		}
		items[i].Comments = comments[items[i].ID]
	}

	return items, nil
}

func (s *ItemService) Search(ctx context.Context, text string) ([]models.Item, error) {
	return s.repo.SearchItems(ctx, text)
}

// AddComment accepts feedback only from a user with a completed APPROVED
// booking of the item.
func (s *ItemService) AddComment(ctx context.Context, authorID, itemID int64, text string) (*models.Comment, error) {
	author, err := s.repo.GetUser(ctx, authorID)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	finished, err := s.repo.HasFinishedBooking(ctx, item.ID, author.ID, time.Now())
	if err != nil {
		return nil, err
	}
	if !finished {
		return nil, fmt.Errorf("user %d never rented item %d: %w", authorID, itemID, domain.ErrNeverRented)
	}

	comment := &models.Comment{
		ItemID:     item.ID,
		AuthorID:   author.ID,
		AuthorName: author.Name,
		Text:       text,
		Created:    time.Now(),
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		payload := events.CommentEventPayload{
			CommentID:  comment.ID,
			ItemID:     comment.ItemID,
			AuthorID:   comment.AuthorID,
			AuthorName: comment.AuthorName,
			Text:       comment.Text,
		}
		if err := s.eventBus.PublishJSON(events.EventCommentAdded, payload); err != nil {
			s.logger.Error().Err(err).Int64("comment_id", comment.ID).Msg("publish event error")
		}
	}

	return comment, nil
}
