package queries

import (
	"context"
	"log/slog"

	"fatcow/contexts/market-core/marketplace-service/domain/entities"
	"fatcow/contexts/market-core/marketplace-service/ports"
)

type GetListingQuery struct {
	ListingID uint64
}

type GetListingResult struct {
	Listing entities.Listing
}

type GetListingUseCase struct {
	Listings ports.ListingRepository
	Logger   *slog.Logger
}

func (u GetListingUseCase) Execute(ctx context.Context, query GetListingQuery) (GetListingResult, error) {
	listing, err := u.Listings.GetListing(ctx, query.ListingID)
	if err != nil {
		return GetListingResult{}, err
	}
	return GetListingResult{Listing: listing}, nil
}
