package service

import (
	"context"
	"strings"

	"drobeo/internal/ai"
	"drobeo/internal/featureflags"
	"drobeo/internal/models"
	"drobeo/internal/observability"
	"drobeo/internal/repository"
	"drobeo/internal/validation"
)

// adviceContextItems is how many recent items accompany a question.
const adviceContextItems = 5

type AdviceService struct {
	stats   repository.StatsRepository
	items   repository.ClothingItemRepository
	advisor ai.AdviceGenerator
	flags   *featureflags.Manager
	log     *observability.ServiceLogger
}

func NewAdviceService(
	stats repository.StatsRepository,
	items repository.ClothingItemRepository,
	advisor ai.AdviceGenerator,
	flags *featureflags.Manager,
) *AdviceService {
	return &AdviceService{
		stats:   stats,
		items:   items,
		advisor: advisor,
		flags:   flags,
		log:     observability.NewServiceLogger("advice"),
	}
}

// GetStyleAdvice answers a style question in the context of the user's wardrobe.
func (s *AdviceService) GetStyleAdvice(ctx context.Context, userID uint, question string) (string, error) {
	question = strings.TrimSpace(question)
	var v validation.Errors
	validation.Name(&v, "question", question, 1000)
	if err := v.Err(); err != nil {
		return "", err
	}
	if !s.flags.EnabledOr(featureflags.StyleAdvice, userID, true) {
		return "", models.NewPreconditionFailedError("Style advice is not available")
	}

	stats, err := s.stats.GetUserStats(ctx, userID)
	if err != nil {
		return "", err
	}
	recent, err := s.items.Recent(ctx, userID, adviceContextItems)
	if err != nil {
		return "", err
	}

	req := ai.AdviceRequest{Question: question, Stats: *stats}
	for _, item := range recent {
		req.RecentItems = append(req.RecentItems, ai.AdviceItem{
			Name:     item.Name,
			Category: item.CategoryName(),
			Color:    item.Color,
		})
	}

	answer, err := s.advisor.StyleAdvice(ctx, req)
	if err != nil {
		s.log.Error(ctx, "style advice failed", err, map[string]any{"user_id": userID})
		return "", models.NewAdviceFailedError(err)
	}
	if strings.TrimSpace(answer) == "" {
		return ai.FallbackAdvice, nil
	}
	return answer, nil
}
