package service

import (
	"context"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type RequestService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewRequestService(repo domain.Repository, logger *zerolog.Logger) *RequestService {
	return &RequestService{repo: repo, logger: logger}
}

func (s *RequestService) Create(ctx context.Context, requestorID int64, description string) (*models.ItemRequest, error) {
	request := &models.ItemRequest{
		Description: description,
		RequestorID: requestorID,
		Created:     time.Now(),
	}
	if err := s.repo.CreateRequest(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

// GetOwn returns the requestor's requests, newest first, with the items
// created against each.
func (s *RequestService) GetOwn(ctx context.Context, requestorID int64) ([]models.ItemRequest, error) {
	requests, err := s.repo.GetRequestsByRequestor(ctx, requestorID)
	if err != nil {
		return nil, err
	}
	return s.enrichWithItems(ctx, requests)
}

func (s *RequestService) GetAll(ctx context.Context) ([]models.ItemRequest, error) {
	requests, err := s.repo.GetAllRequests(ctx)
	if err != nil {
		return nil, err
	}
	return s.enrichWithItems(ctx, requests)
}

func (s *RequestService) Get(ctx context.Context, id int64) (*models.ItemRequest, error) {
	request, err := s.repo.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	enriched, err := s.enrichWithItems(ctx, []models.ItemRequest{*request})
	if err != nil {
		return nil, err
	}
	return &enriched[0], nil
}

// enrichWithItems attaches the items created against each request in one
// grouped lookup.
func (s *RequestService) enrichWithItems(ctx context.Context, requests []models.ItemRequest) ([]models.ItemRequest, error) {
	if len(requests) == 0 {
		return requests, nil
	}

	ids := make([]int64, len(requests))
	for i, request := range requests {
		ids[i] = request.ID
	}

	items, err := s.repo.GetItemsByRequestIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	grouped := make(map[int64][]models.RequestItem, len(requests))
	for _, item := range items {
		grouped[item.RequestID] = append(grouped[item.RequestID], item)
	}

	for i := range requests {
		requests[i].Items = grouped[requests[i].ID]
	}

	return requests, nil
}
