package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"drobeo/internal/imaging"
	"drobeo/internal/models"
)

// Garment categories the classifier may return.
var garmentCategories = []string{"tops", "bottoms", "dresses", "shoes", "accessories", "outerwear"}

// ImageAnalysis is the normalised classification of one garment photo.
type ImageAnalysis struct {
	Category   string            `json:"category"`
	Color      string            `json:"color"`
	Style      string            `json:"style"`
	Season     models.Season     `json:"season"`
	Occasion   []models.Occasion `json:"occasion"`
	Pattern    string            `json:"pattern,omitempty"`
	Material   string            `json:"material,omitempty"`
	Confidence float64           `json:"confidence"`
}

type rawAnalysis struct {
	Category   string   `json:"category"`
	Color      string   `json:"color"`
	Style      string   `json:"style"`
	Season     string   `json:"season"`
	Occasion   []string `json:"occasion"`
	Pattern    string   `json:"pattern"`
	Material   string   `json:"material"`
	Confidence *float64 `json:"confidence"`
}

// ImageAnalyzer classifies garment photos.
type ImageAnalyzer interface {
	Analyze(ctx context.Context, image []byte, contentType string) (*ImageAnalysis, error)
}

const visionPrompt = `Classify the single clothing item in this photo. Respond with JSON only:
{"category":"tops|bottoms|dresses|shoes|accessories|outerwear","color":"primary color","style":"casual|formal|sporty|...","season":"spring|summer|fall|winter|all","occasion":["work","casual","formal","party","workout","date","travel"],"pattern":"solid|striped|...","material":"cotton|denim|...","confidence":0.0}`

// Analyze downsizes the image and asks the vision model to classify it.
func (s *Stylist) Analyze(ctx context.Context, image []byte, contentType string) (*ImageAnalysis, error) {
	prepared, err := imaging.PrepareForAnalysis(image, contentType)
	if err != nil {
		return nil, fmt.Errorf("prepare image: %w", err)
	}

	text, err := s.llm.Complete(ctx, Request{
		Operation: "analyze_image",
		Prompt:    visionPrompt,
		Image:     prepared,
		ImageMIME: "image/jpeg",
		JSON:      true,
		MaxTokens: 400,
	})
	if err != nil {
		return nil, err
	}

	var raw rawAnalysis
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &raw); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	return normalizeAnalysis(raw), nil
}

func normalizeAnalysis(raw rawAnalysis) *ImageAnalysis {
	out := &ImageAnalysis{
		Category:   "tops",
		Color:      strings.TrimSpace(raw.Color),
		Style:      strings.TrimSpace(raw.Style),
		Season:     models.Season(strings.ToLower(strings.TrimSpace(raw.Season))),
		Pattern:    strings.TrimSpace(raw.Pattern),
		Material:   strings.TrimSpace(raw.Material),
		Confidence: 0.7,
	}

	category := strings.ToLower(strings.TrimSpace(raw.Category))
	for _, c := range garmentCategories {
		if c == category {
			out.Category = c
			break
		}
	}
	if !out.Season.Valid() {
		out.Season = models.SeasonAll
	}
	if out.Color == "" {
		out.Color = "unknown"
	}
	if out.Style == "" {
		out.Style = "casual"
	}

	seen := make(map[models.Occasion]bool)
	for _, o := range raw.Occasion {
		occ := models.Occasion(strings.ToLower(strings.TrimSpace(o)))
		if occ.Valid() && !seen[occ] {
			out.Occasion = append(out.Occasion, occ)
			seen[occ] = true
		}
	}
	if len(out.Occasion) == 0 {
		out.Occasion = []models.Occasion{models.OccasionCasual}
	}

	if raw.Confidence != nil && !math.IsNaN(*raw.Confidence) {
		out.Confidence = math.Max(0, math.Min(1, *raw.Confidence))
	}
	return out
}
