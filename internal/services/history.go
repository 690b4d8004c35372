package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"alfredoptarigan/ats-resume-analyzer/internal/models"
	"alfredoptarigan/ats-resume-analyzer/internal/repositories"
)

// ErrIndexDisabled is returned by Similar when no analysis index is configured.
var ErrIndexDisabled = errors.New("similar analysis search is not configured")

type HistoryService interface {
	List(ctx context.Context, limit int, owner models.OwnerScope) ([]models.AnalysisSummary, error)
	Get(ctx context.Context, id uint, owner models.OwnerScope) (*models.Analysis, error)
	Delete(ctx context.Context, id uint, owner models.OwnerScope) error
	Stats(ctx context.Context, owner models.OwnerScope) (*models.AnalysisStats, error)
	Similar(ctx context.Context, query string, limit int, owner models.OwnerScope) ([]models.AnalysisSummary, error)
	Reindex(ctx context.Context) (int, error)
}

type historyService struct {
	repo        repositories.AnalysisRepository
	index       AnalysisIndex
	maxLimit    int
	statsWindow time.Duration
}

// NewHistoryService serves stored analyses. index may be nil.
func NewHistoryService(repo repositories.AnalysisRepository, index AnalysisIndex, maxLimit int, statsWindow time.Duration) HistoryService {
	if maxLimit <= 0 {
		maxLimit = repositories.DefaultListLimit
	}
	return &historyService{
		repo:        repo,
		index:       index,
		maxLimit:    maxLimit,
		statsWindow: statsWindow,
	}
}

func (h *historyService) clamp(limit int) int {
	if limit <= 0 || limit > h.maxLimit {
		return h.maxLimit
	}
	return limit
}

func (h *historyService) List(ctx context.Context, limit int, owner models.OwnerScope) ([]models.AnalysisSummary, error) {
	return h.repo.List(ctx, h.clamp(limit), owner)
}

func (h *historyService) Get(ctx context.Context, id uint, owner models.OwnerScope) (*models.Analysis, error) {
	return h.repo.FindByID(ctx, id, owner)
}

func (h *historyService) Delete(ctx context.Context, id uint, owner models.OwnerScope) error {
	if err := h.repo.Delete(ctx, id, owner); err != nil {
		return err
	}

	if h.index != nil {
		if err := h.index.Remove(ctx, id); err != nil {
			log.Printf("⚠️  Failed to remove analysis %d from index: %v\n", id, err)
		}
	}
	return nil
}

func (h *historyService) Stats(ctx context.Context, owner models.OwnerScope) (*models.AnalysisStats, error) {
	return h.repo.Stats(ctx, owner, h.statsWindow)
}

func (h *historyService) Similar(ctx context.Context, query string, limit int, owner models.OwnerScope) ([]models.AnalysisSummary, error) {
	if h.index == nil {
		return nil, ErrIndexDisabled
	}

	ids, err := h.index.Search(ctx, query, h.clamp(limit), owner)
	if err != nil {
		return nil, fmt.Errorf("failed to search analyses: %w", err)
	}

	found, err := h.repo.FindByIDs(ctx, ids, owner)
	if err != nil {
		return nil, err
	}
	return models.Summaries(found), nil
}

// Reindex pushes every stored analysis into the index and returns how many succeeded.
func (h *historyService) Reindex(ctx context.Context) (int, error) {
	if h.index == nil {
		return 0, ErrIndexDisabled
	}

	all, err := h.repo.All(ctx)
	if err != nil {
		return 0, err
	}

	indexed := 0
	for i := range all {
		if err := h.index.Index(ctx, &all[i]); err != nil {
			log.Printf("   ❌ Failed to index analysis %d: %v", all[i].ID, err)
			continue
		}
		indexed++
		if indexed%10 == 0 {
			log.Printf("   📊 Progress: %d/%d analyses indexed", indexed, len(all))
		}
	}
	return indexed, nil
}
