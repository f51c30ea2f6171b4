package ai

import (
	"context"
	"fmt"
	"strings"

	"drobeo/internal/models"
)

// FallbackAdvice is returned when the model answers with nothing.
const FallbackAdvice = "I'm sorry, I couldn't provide advice at this time."

// AdviceItem is one recent wardrobe item given to the advisor as context.
type AdviceItem struct {
	Name     string
	Category string
	Color    string
}

// AdviceRequest carries the question and the user's wardrobe context.
type AdviceRequest struct {
	Question    string
	Stats       models.UserStats
	RecentItems []AdviceItem
}

// AdviceGenerator answers free-form style questions.
type AdviceGenerator interface {
	StyleAdvice(ctx context.Context, req AdviceRequest) (string, error)
}

const adviceSystemPrompt = `You are a friendly personal stylist. Give concise, practical advice grounded in the user's wardrobe. Keep answers under 200 words.`

// StyleAdvice asks the model one question. Empty answers become FallbackAdvice.
func (s *Stylist) StyleAdvice(ctx context.Context, req AdviceRequest) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Wardrobe: %d items, %d outfits created, %d%% of items worn, %d wishlist items.\n",
		req.Stats.TotalItems, req.Stats.OutfitsCreated, req.Stats.ItemsWornPercentage, req.Stats.WishlistItems)
	if len(req.RecentItems) > 0 {
		b.WriteString("Recently added:\n")
		for _, item := range req.RecentItems {
			fmt.Fprintf(&b, "- %s (%s, %s)\n", item.Name, item.Category, item.Color)
		}
	}
	fmt.Fprintf(&b, "Question: %s", req.Question)

	text, err := s.llm.Complete(ctx, Request{
		Operation:   "style_advice",
		System:      adviceSystemPrompt,
		Prompt:      b.String(),
		MaxTokens:   500,
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}
	if answer := strings.TrimSpace(text); answer != "" {
		return answer, nil
	}
	return FallbackAdvice, nil
}
