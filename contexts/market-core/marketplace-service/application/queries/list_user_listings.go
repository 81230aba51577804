package queries

import (
	"context"
	"log/slog"

	"fatcow/contexts/market-core/marketplace-service/domain/entities"
	domainerrors "fatcow/contexts/market-core/marketplace-service/domain/errors"
	"fatcow/contexts/market-core/marketplace-service/ports"
)

type ListUserListingsQuery struct {
	User   string
	Limit  int
	Offset int
}

type ListUserListingsResult struct {
	Items []entities.Listing
}

// ListUserListingsUseCase returns listings the user touched as seller or
// buyer, newest first.
type ListUserListingsUseCase struct {
	Listings ports.ListingRepository
	Logger   *slog.Logger
}

func (u ListUserListingsUseCase) Execute(
	ctx context.Context,
	query ListUserListingsQuery,
) (ListUserListingsResult, error) {
	if query.User == "" {
		return ListUserListingsResult{}, domainerrors.ErrInvalidInput
	}
	limit := query.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := query.Offset
	if offset < 0 {
		offset = 0
	}
	items, err := u.Listings.ListUserListings(ctx, query.User, limit, offset)
	if err != nil {
		return ListUserListingsResult{}, err
	}
	return ListUserListingsResult{Items: items}, nil
}
