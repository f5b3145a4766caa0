package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/swaplane/exchange-server-go/internal/errors"
	"github.com/swaplane/exchange-server-go/internal/model"
)

func TestValidateTerms(t *testing.T) {
	tests := []struct {
		name     string
		exType   model.ExchangeType
		raw      string
		wantCode apperrors.ErrorCode
	}{
		{
			name:   "valid fx terms with rate",
			exType: model.ExchangeTypeFX,
			raw:    `{"fromAmount":100,"fromCurrency":"USD","toCurrency":"KRW","rate":1350.5,"toAmount":135050,"isFullAmount":true}`,
		},
		{
			name:   "valid fx terms with negotiable rate",
			exType: model.ExchangeTypeFX,
			raw:    `{"fromAmount":250,"fromCurrency":"EUR","toCurrency":"JPY"}`,
		},
		{
			name:     "empty payload",
			exType:   model.ExchangeTypeFX,
			raw:      "",
			wantCode: apperrors.ErrCodeMissingRequired,
		},
		{
			name:     "malformed json",
			exType:   model.ExchangeTypeFX,
			raw:      `{"fromAmount":`,
			wantCode: apperrors.ErrCodeInvalidInput,
		},
		{
			name:     "negative fromAmount",
			exType:   model.ExchangeTypeFX,
			raw:      `{"fromAmount":-1,"fromCurrency":"USD","toCurrency":"KRW"}`,
			wantCode: apperrors.ErrCodeInvalidInput,
		},
		{
			name:     "bad currency code",
			exType:   model.ExchangeTypeFX,
			raw:      `{"fromAmount":100,"fromCurrency":"usd","toCurrency":"KRW"}`,
			wantCode: apperrors.ErrCodeInvalidInput,
		},
		{
			name:     "toAmount without rate",
			exType:   model.ExchangeTypeFX,
			raw:      `{"fromAmount":100,"fromCurrency":"USD","toCurrency":"KRW","toAmount":135050}`,
			wantCode: apperrors.ErrCodeInvalidInput,
		},
		{
			name:     "negative rate",
			exType:   model.ExchangeTypeFX,
			raw:      `{"fromAmount":100,"fromCurrency":"USD","toCurrency":"KRW","rate":-2}`,
			wantCode: apperrors.ErrCodeInvalidInput,
		},
		{
			name:   "valid shipping terms",
			exType: model.ExchangeTypeShipping,
			raw:    `{"description":"vitamin bundle","weight":1.2,"price":42000}`,
		},
		{
			name:     "shipping terms without description",
			exType:   model.ExchangeTypeShipping,
			raw:      `{"description":"   ","weight":1.2}`,
			wantCode: apperrors.ErrCodeMissingRequired,
		},
		{
			name:     "unknown exchange type",
			exType:   model.ExchangeType("barter"),
			raw:      `{}`,
			wantCode: apperrors.ErrCodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTerms(tt.exType, json.RawMessage(tt.raw))
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperrors.HasCode(err, tt.wantCode), "got %v", err)
		})
	}
}
