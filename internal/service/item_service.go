package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/moiz862/backend/internal/domain"
	"github.com/moiz862/backend/internal/repository"
	"github.com/samber/lo"
)

var (
	ErrItemNotFound = errors.New("item not found")
	ErrNotItemOwner = errors.New("only the item owner can perform this action")
)

type ItemService struct {
	itemRepo repository.ItemRepository
}

func NewItemService(itemRepo repository.ItemRepository) *ItemService {
	return &ItemService{itemRepo: itemRepo}
}

type CreateItemInput struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Tags        []string            `json:"tags"`
	Images      []domain.Attachment `json:"images"`
}

type UpdateItemInput struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	Tags        *[]string            `json:"tags"`
	Images      *[]domain.Attachment `json:"images"`
}

type ListItemsInput struct {
	OwnerID *uuid.UUID
	Tag     string
	Page    int
	Limit   int
}

type ItemListResponse struct {
	Items      []domain.Item `json:"items"`
	Pagination Pagination    `json:"pagination"`
}

func (s *ItemService) Create(ctx context.Context, ownerID uuid.UUID, input CreateItemInput) (*domain.Item, error) {
	if err := validateAttachments(input.Images); err != nil {
		return nil, err
	}

	now := time.Now()
	item := &domain.Item{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Tags:        normalizeTags(input.Tags),
		Images:      input.Images,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	return item, nil
}

func (s *ItemService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	return item, nil
}

func (s *ItemService) List(ctx context.Context, input ListItemsInput) (*ItemListResponse, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	items, total, err := s.itemRepo.List(ctx, repository.ItemFilter{
		OwnerID: input.OwnerID,
		Tag:     strings.TrimSpace(input.Tag),
		Offset:  (page - 1) * limit,
		Limit:   limit,
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Item{}
	}

	return &ItemListResponse{
		Items:      items,
		Pagination: NewPagination(page, limit, total),
	}, nil
}

func (s *ItemService) Update(ctx context.Context, userID, itemID uuid.UUID, input UpdateItemInput) (*domain.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	if item.OwnerID != userID {
		return nil, ErrNotItemOwner
	}

	if input.Title != nil {
		item.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		item.Description = strings.TrimSpace(*input.Description)
	}
	if input.Tags != nil {
		item.Tags = normalizeTags(*input.Tags)
	}
	if input.Images != nil {
		if err := validateAttachments(*input.Images); err != nil {
			return nil, err
		}
		item.Images = *input.Images
	}
	item.UpdatedAt = time.Now()

	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("updating item: %w", err)
	}

	return item, nil
}

func (s *ItemService) Delete(ctx context.Context, userID, itemID uuid.UUID) error {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrItemNotFound
	}
	if item.OwnerID != userID {
		return ErrNotItemOwner
	}

	return s.itemRepo.Delete(ctx, itemID)
}

// normalizeTags trims, lowercases, drops empties and dedupes while keeping
// first-seen order.
func normalizeTags(tags []string) []string {
	cleaned := lo.FilterMap(tags, func(t string, _ int) (string, bool) {
		t = strings.ToLower(strings.TrimSpace(t))
		return t, t != ""
	})
	return lo.Uniq(cleaned)
}
