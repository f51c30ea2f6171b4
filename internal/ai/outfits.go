package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"drobeo/internal/models"
)

// MaxSuggestions caps how many outfits one generation call may produce.
const MaxSuggestions = 3

// WardrobeItem is the view of a clothing item the generator sees.
type WardrobeItem struct {
	ID        uint          `json:"id"`
	Name      string        `json:"name"`
	Category  string        `json:"category"`
	Color     string        `json:"color"`
	Season    models.Season `json:"season"`
	Brand     string        `json:"brand,omitempty"`
	Tags      []string      `json:"tags,omitempty"`
	TimesWorn int           `json:"timesWorn"`
	LastWorn  *time.Time    `json:"lastWorn,omitempty"`
}

// OutfitRequest is everything the generator needs to propose outfits.
type OutfitRequest struct {
	Items       []WardrobeItem
	Occasion    models.Occasion
	Weather     models.Weather
	Style       string
	Colors      []string
	Preferences models.Preferences
}

// OutfitSuggestion is one proposal as returned by the model. Fields are raw:
// callers validate ids and clamp the rating.
type OutfitSuggestion struct {
	Name             string          `json:"name"`
	ItemIDs          flexIDs         `json:"items"`
	Occasion         models.Occasion `json:"occasion"`
	WeatherCondition models.Weather  `json:"weatherCondition"`
	StyleDescription string          `json:"styleDescription"`
	Rating           *float64        `json:"rating"`
	Reasoning        string          `json:"reasoning"`
}

type outfitResponse struct {
	Outfits []OutfitSuggestion `json:"outfits"`
}

// flexIDs accepts ids encoded as numbers or numeric strings. Anything else is dropped.
type flexIDs []uint

func (f *flexIDs) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(flexIDs, 0, len(raw))
	for _, r := range raw {
		var n json.Number
		if err := json.Unmarshal(r, &n); err == nil {
			if v, err := strconv.ParseUint(n.String(), 10, 64); err == nil {
				out = append(out, uint(v))
			}
			continue
		}
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			if v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64); err == nil {
				out = append(out, uint(v))
			}
		}
	}
	*f = out
	return nil
}

// OutfitGenerator proposes outfit combinations from a wardrobe.
type OutfitGenerator interface {
	GenerateOutfits(ctx context.Context, req OutfitRequest) ([]OutfitSuggestion, error)
}

// Stylist implements OutfitGenerator, ImageAnalyzer and AdviceGenerator on a Completer.
type Stylist struct {
	llm Completer
}

// NewStylist returns a Stylist using c.
func NewStylist(c Completer) *Stylist {
	return &Stylist{llm: c}
}

const outfitSystemPrompt = `You are a professional fashion stylist. You build complete outfits strictly from the user's own wardrobe.
Rules:
- Use only item ids that appear in the wardrobe list.
- Each outfit combines items from different categories into a wearable look.
- Prefer items with fewer wears and older last-worn dates.
- Propose at most 3 outfits.
Respond with JSON only, in exactly this shape:
{"outfits":[{"name":"...","items":[1,2,3],"occasion":"...","weatherCondition":"...","styleDescription":"...","rating":4,"reasoning":"..."}]}`

// GenerateOutfits asks the model for up to MaxSuggestions outfits.
func (s *Stylist) GenerateOutfits(ctx context.Context, req OutfitRequest) ([]OutfitSuggestion, error) {
	wardrobe, err := json.Marshal(req.Items)
	if err != nil {
		return nil, fmt.Errorf("encode wardrobe: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Occasion: %s\n", req.Occasion)
	if req.Weather != "" {
		fmt.Fprintf(&b, "Weather: %s\n", req.Weather)
	}
	if req.Style != "" {
		fmt.Fprintf(&b, "Preferred style: %s\n", req.Style)
	}
	if len(req.Colors) > 0 {
		fmt.Fprintf(&b, "Preferred colors: %s\n", strings.Join(req.Colors, ", "))
	}
	if p := req.Preferences; len(p.Styles) > 0 || len(p.Goals) > 0 {
		fmt.Fprintf(&b, "Style profile: styles=%s goals=%s\n", strings.Join(p.Styles, ", "), strings.Join(p.Goals, ", "))
	}
	fmt.Fprintf(&b, "Wardrobe:\n%s\n", wardrobe)

	text, err := s.llm.Complete(ctx, Request{
		Operation:   "generate_outfits",
		System:      outfitSystemPrompt,
		Prompt:      b.String(),
		JSON:        true,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, err
	}

	var resp outfitResponse
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &resp); err != nil {
		return nil, fmt.Errorf("decode outfit response: %w", err)
	}
	if len(resp.Outfits) == 0 {
		return nil, fmt.Errorf("decode outfit response: no outfits")
	}
	if len(resp.Outfits) > MaxSuggestions {
		resp.Outfits = resp.Outfits[:MaxSuggestions]
	}
	return resp.Outfits, nil
}
