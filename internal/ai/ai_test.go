package ai

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"

	"drobeo/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stub(answer string, err error, seen *Request) Completer {
	return CompleterFunc(func(_ context.Context, req Request) (string, error) {
		if seen != nil {
			*seen = req
		}
		return answer, err
	})
}

func TestGenerateOutfits_ParsesAndCaps(t *testing.T) {
	var seen Request
	answer := "```json\n" + `{"outfits":[
		{"name":"A","items":[1,"2",3.5,"x"],"occasion":"work","rating":9,"styleDescription":"sharp","reasoning":"r"},
		{"name":"B","items":[2]},
		{"name":"C","items":[3]},
		{"name":"D","items":[4]}
	]}` + "\n```"

	s := NewStylist(stub(answer, nil, &seen))
	out, err := s.GenerateOutfits(context.Background(), OutfitRequest{
		Items:    []WardrobeItem{{ID: 1, Name: "Shirt", Category: "Tops"}},
		Occasion: models.OccasionWork,
		Weather:  models.WeatherCold,
		Colors:   []string{"navy"},
	})
	require.NoError(t, err)
	require.Len(t, out, MaxSuggestions)
	assert.Equal(t, []uint{1, 2}, []uint(out[0].ItemIDs))
	require.NotNil(t, out[0].Rating)
	assert.Equal(t, 9.0, *out[0].Rating)
	assert.Nil(t, out[1].Rating)

	assert.True(t, seen.JSON)
	assert.Equal(t, "generate_outfits", seen.Operation)
	assert.Contains(t, seen.Prompt, "Occasion: work")
	assert.Contains(t, seen.Prompt, "Weather: cold")
	assert.Contains(t, seen.Prompt, `"name":"Shirt"`)
}

func TestGenerateOutfits_Failures(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		err    error
	}{
		{name: "upstream error", err: errors.New("503")},
		{name: "not json", answer: "Here are some outfits!"},
		{name: "no outfits", answer: `{"outfits":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStylist(stub(tt.answer, tt.err, nil)).GenerateOutfits(context.Background(), OutfitRequest{Occasion: models.OccasionCasual})
			assert.Error(t, err)
		})
	}
}

func TestNormalizeAnalysis(t *testing.T) {
	conf := func(v float64) *float64 { return &v }

	tests := []struct {
		name string
		raw  rawAnalysis
		want ImageAnalysis
	}{
		{
			name: "defaults",
			raw:  rawAnalysis{},
			want: ImageAnalysis{Category: "tops", Color: "unknown", Style: "casual", Season: models.SeasonAll, Occasion: []models.Occasion{models.OccasionCasual}, Confidence: 0.7},
		},
		{
			name: "valid values kept",
			raw:  rawAnalysis{Category: "Outerwear", Color: "camel", Style: "classic", Season: "Winter", Occasion: []string{"work", "WORK", "opera"}, Pattern: "solid", Material: "wool", Confidence: conf(0.92)},
			want: ImageAnalysis{Category: "outerwear", Color: "camel", Style: "classic", Season: models.SeasonWinter, Occasion: []models.Occasion{models.OccasionWork}, Pattern: "solid", Material: "wool", Confidence: 0.92},
		},
		{
			name: "invalid category and season, clamped confidence",
			raw:  rawAnalysis{Category: "hats", Color: "red", Season: "monsoon", Confidence: conf(1.7)},
			want: ImageAnalysis{Category: "tops", Color: "red", Style: "casual", Season: models.SeasonAll, Occasion: []models.Occasion{models.OccasionCasual}, Confidence: 1},
		},
		{
			name: "negative confidence",
			raw:  rawAnalysis{Category: "shoes", Confidence: conf(-0.2)},
			want: ImageAnalysis{Category: "shoes", Color: "unknown", Style: "casual", Season: models.SeasonAll, Occasion: []models.Occasion{models.OccasionCasual}, Confidence: 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, *normalizeAnalysis(tt.raw))
		})
	}
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 16, 16))))
	return buf.Bytes()
}

func TestAnalyze_SendsJPEG(t *testing.T) {
	var seen Request
	s := NewStylist(stub(`{"category":"dresses","color":"green","season":"summer","occasion":["party"],"confidence":0.8}`, nil, &seen))

	got, err := s.Analyze(context.Background(), testPNG(t), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "dresses", got.Category)
	assert.Equal(t, "image/jpeg", seen.ImageMIME)
	assert.NotEmpty(t, seen.Image)
	assert.True(t, seen.JSON)
}

func TestAnalyze_Errors(t *testing.T) {
	s := NewStylist(stub("not json", nil, nil))
	_, err := s.Analyze(context.Background(), testPNG(t), "")
	assert.Error(t, err)

	_, err = s.Analyze(context.Background(), []byte("nope"), "")
	assert.Error(t, err)
}

func TestStyleAdvice(t *testing.T) {
	var seen Request
	s := NewStylist(stub("  Try a camel coat.  ", nil, &seen))
	answer, err := s.StyleAdvice(context.Background(), AdviceRequest{
		Question:    "What goes with grey trousers?",
		Stats:       models.UserStats{TotalItems: 12, ItemsWornPercentage: 50},
		RecentItems: []AdviceItem{{Name: "Oxford shirt", Category: "Tops", Color: "blue"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Try a camel coat.", answer)
	assert.Contains(t, seen.Prompt, "12 items")
	assert.Contains(t, seen.Prompt, "Oxford shirt (Tops, blue)")
	assert.False(t, seen.JSON)

	empty, err := NewStylist(stub("   ", nil, nil)).StyleAdvice(context.Background(), AdviceRequest{Question: "?"})
	require.NoError(t, err)
	assert.Equal(t, FallbackAdvice, empty)

	_, err = NewStylist(stub("", errors.New("timeout"), nil)).StyleAdvice(context.Background(), AdviceRequest{Question: "?"})
	assert.Error(t, err)
}

func TestClient_NotConfigured(t *testing.T) {
	c, err := NewClient(Config{})
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), Request{Operation: "style_advice", Prompt: "hi"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(` {"a":1} `))
}
