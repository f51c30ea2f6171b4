package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_HTTPStatus(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{NewValidationError("bad"), fiber.StatusBadRequest},
		{NewNotFoundError("Outfit", 3), fiber.StatusNotFound},
		{NewPreconditionFailedError("need more"), fiber.StatusUnprocessableEntity},
		{NewUnauthorizedError("no"), fiber.StatusUnauthorized},
		{NewConflictError("dup"), fiber.StatusConflict},
		{NewGenerationFailedError(errors.New("x")), fiber.StatusBadGateway},
		{NewAnalysisFailedError(errors.New("x")), fiber.StatusBadGateway},
		{NewAdviceFailedError(errors.New("x")), fiber.StatusBadGateway},
		{NewSMSDeliveryFailedError(errors.New("x")), fiber.StatusBadGateway},
		{NewInternalError(errors.New("x")), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.HTTPStatus(), tt.err.Code)
	}
}

func TestAsAppError_WrapsUnknown(t *testing.T) {
	wrapped := fmt.Errorf("context: %w", NewNotFoundError("Item", 1))
	assert.True(t, IsCode(wrapped, CodeNotFound))
	assert.Equal(t, fiber.StatusNotFound, StatusFor(wrapped))

	plain := errors.New("boom")
	assert.Equal(t, CodeInternal, AsAppError(plain).Code)
}

func TestRespondWithAppError_HidesUpstreamDetail(t *testing.T) {
	app := fiber.New()
	app.Get("/gen", func(c *fiber.Ctx) error {
		return RespondWithAppError(c, NewGenerationFailedError(errors.New("openai: 500 secret upstream text")))
	})
	app.Get("/val", func(c *fiber.Ctx) error {
		return RespondWithAppError(c, NewFieldValidationError(FieldError{Field: "season", Message: "invalid"}))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/gen", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.NotContains(t, string(body), "secret upstream")

	var out ErrorResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, CodeGenerationFailed, out.Code)

	resp, err = app.Test(httptest.NewRequest("GET", "/val", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	body, _ = io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Fields, 1)
	assert.Equal(t, "season", out.Fields[0].Field)
}

func TestWeather_SuitableSeasons(t *testing.T) {
	assert.Contains(t, WeatherSnowy.SuitableSeasons(), SeasonWinter)
	assert.NotContains(t, WeatherHot.SuitableSeasons(), SeasonWinter)
	assert.Nil(t, WeatherMild.SuitableSeasons())
	assert.True(t, OccasionDate.Valid())
	assert.False(t, Season("monsoon").Valid())
}
