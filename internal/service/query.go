package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/costumerent/costume-market/internal/model"
)

// QueryService answers read-only costume queries.
type QueryService struct {
	costumes CostumeStore
	log      *zap.Logger
}

// NewQueryService returns a QueryService backed by costumes.
func NewQueryService(costumes CostumeStore, log *zap.Logger) *QueryService {
	return &QueryService{costumes: costumes, log: log.Named("query")}
}

// Search returns costumes whose description contains term, ignoring case,
// newest first.  A blank term returns every costume.
func (s *QueryService) Search(ctx context.Context, term string) ([]*model.Costume, error) {
	term = strings.TrimSpace(term)
	var (
		out []*model.Costume
		err error
	)
	if term == "" {
		out, err = s.costumes.ListAll(ctx)
	} else {
		out, err = s.costumes.Search(ctx, term)
	}
	if err != nil {
		err = storeErr(err)
		logPersistence(s.log, "search costumes", err)
		return nil, err
	}
	return out, nil
}

// ListBySeller returns the listings of sellerID.  Sellers may only list
// their own costumes.
func (s *QueryService) ListBySeller(ctx context.Context, sellerID uint64, p model.Principal) ([]*model.Costume, error) {
	if err := authorize(p, sellerID); err != nil {
		return nil, err
	}
	out, err := s.costumes.ListBySeller(ctx, sellerID)
	if err != nil {
		err = storeErr(err)
		logPersistence(s.log, "list seller costumes", err)
		return nil, err
	}
	return out, nil
}
