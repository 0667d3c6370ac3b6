// Package validate rejects malformed commands before they reach the
// matching engine. Every returned error wraps domain.ErrValidation.
package validate

import (
	"fmt"
	"strings"

	"github.com/mkuzmina/exchange-batch/internal/domain"
)

// Command checks field presence, enum values, pair shape and the sign
// of the decimal fields of a raw command.
func Command(cmd domain.Command) error {
	switch cmd.TypeOp {
	case domain.Create, domain.Delete:
	default:
		return fmt.Errorf("%w: invalid type_op %q", domain.ErrValidation, cmd.TypeOp)
	}
	switch cmd.Side {
	case domain.Buy, domain.Sell:
	default:
		return fmt.Errorf("%w: invalid side %q", domain.ErrValidation, cmd.Side)
	}
	if cmd.OrderID == "" {
		return fmt.Errorf("%w: order_id is required", domain.ErrValidation)
	}
	if cmd.AccountID == "" {
		return fmt.Errorf("%w: account_id is required", domain.ErrValidation)
	}
	if err := pair(cmd.Pair); err != nil {
		return err
	}
	if err := positiveDecimal("amount", cmd.Amount); err != nil {
		return err
	}
	if err := positiveDecimal("limit_price", cmd.LimitPrice); err != nil {
		return err
	}
	return nil
}

func pair(p string) error {
	base, quote, ok := strings.Cut(p, "/")
	if !ok || base == "" || quote == "" || strings.Contains(quote, "/") {
		return fmt.Errorf("%w: pair %q is not of the form BASE/QUOTE", domain.ErrValidation, p)
	}
	return nil
}

func positiveDecimal(field, raw string) error {
	d, err := domain.ParseDecimal(raw)
	if err != nil {
		return fmt.Errorf("%w: %s %q is not a decimal", domain.ErrValidation, field, raw)
	}
	if d.Sign() <= 0 {
		return fmt.Errorf("%w: %s must be strictly positive, got %q", domain.ErrValidation, field, raw)
	}
	return nil
}
