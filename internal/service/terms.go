package service

import (
	"encoding/json"
	"strings"

	apperrors "github.com/swaplane/exchange-server-go/internal/errors"
	"github.com/swaplane/exchange-server-go/internal/model"
	"github.com/swaplane/exchange-server-go/internal/util"
)

// ValidateTerms checks an agreed-terms payload against its exchange type
// before a session is created. The state machine trusts this ran once at the
// boundary and does not re-validate terms on every transition.
func ValidateTerms(exchangeType model.ExchangeType, raw json.RawMessage) error {
	if len(raw) == 0 {
		return apperrors.MissingRequired("agreedTerms")
	}

	switch exchangeType {
	case model.ExchangeTypeFX:
		return validateFXTerms(raw)
	case model.ExchangeTypeShipping:
		return validateShippingTerms(raw)
	}
	return apperrors.InvalidInput("type", "unknown exchange type")
}

func validateFXTerms(raw json.RawMessage) error {
	var terms model.FXTerms
	if err := json.Unmarshal(raw, &terms); err != nil {
		return apperrors.InvalidInput("agreedTerms", "malformed fx terms").WithCause(err)
	}

	if terms.FromAmount < 0 {
		return apperrors.InvalidInput("fromAmount", "must be non-negative")
	}
	if !util.IsValidCurrencyCode(terms.FromCurrency) {
		return apperrors.InvalidInput("fromCurrency", "must be a three-letter currency code")
	}
	if !util.IsValidCurrencyCode(terms.ToCurrency) {
		return apperrors.InvalidInput("toCurrency", "must be a three-letter currency code")
	}

	// Rate may be absent while pricing is negotiable, in which case toAmount
	// must be absent too.
	if terms.Rate == nil {
		if terms.ToAmount != nil {
			return apperrors.InvalidInput("toAmount", "must be absent when rate is absent")
		}
		return nil
	}
	if *terms.Rate < 0 {
		return apperrors.InvalidInput("rate", "must be non-negative")
	}
	if terms.ToAmount != nil && *terms.ToAmount < 0 {
		return apperrors.InvalidInput("toAmount", "must be non-negative")
	}
	return nil
}

func validateShippingTerms(raw json.RawMessage) error {
	var terms model.ShippingTerms
	if err := json.Unmarshal(raw, &terms); err != nil {
		return apperrors.InvalidInput("agreedTerms", "malformed shipping terms").WithCause(err)
	}

	if strings.TrimSpace(terms.Description) == "" {
		return apperrors.MissingRequired("description")
	}
	return nil
}
