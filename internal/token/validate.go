package token

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// FieldErrors maps a field name to its validation message. Errors are
// field-scoped so callers can render them inline next to the offending input.
type FieldErrors map[string]string

// Error formats all field errors in a stable order.
func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var sb strings.Builder
	for i, f := range fields {
		if i > 0 {
			sb.WriteString("; ")
		}
		fmt.Fprintf(&sb, "%s: %s", f, e[f])
	}
	return sb.String()
}

// ParseAndValidate coerces raw text input into Params, collecting one error
// per invalid field. It is synchronous and cheap enough to re-run on every
// field change. Returns nil Params when any field fails.
func ParseAndValidate(in RawInput) (*Params, FieldErrors) {
	errs := make(FieldErrors)

	if in.Name == "" {
		errs["name"] = "name is required"
	} else if len(in.Name) > MaxNameLen {
		errs["name"] = fmt.Sprintf("name must be at most %d characters", MaxNameLen)
	}

	if in.Symbol == "" {
		errs["symbol"] = "symbol is required"
	} else if len(in.Symbol) > MaxSymbolLen {
		errs["symbol"] = fmt.Sprintf("symbol must be at most %d characters", MaxSymbolLen)
	}

	decimals, err := parseDecimals(in.Decimals)
	if err != nil {
		errs["decimals"] = err.Error()
	}

	supply, err := parseTotalSupply(in.TotalSupply)
	if err != nil {
		errs["totalSupply"] = err.Error()
	}

	if in.ImageURL != "" {
		if u, err := url.Parse(in.ImageURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs["imageUrl"] = "please enter a valid URL"
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return &Params{
		Name:        in.Name,
		Symbol:      in.Symbol,
		Decimals:    decimals,
		TotalSupply: supply,
		Description: in.Description,
		ImageURL:    in.ImageURL,
	}, nil
}

// parseDecimals coerces the decimals text field. Anything that does not
// coerce to an integer in [0, MaxDecimals] is rejected, so NaN and junk
// input never reach the minting-amount computation.
func parseDecimals(s string) (uint8, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("decimals must be a number between 0 and %d", MaxDecimals)
	}
	if v != math.Trunc(v) {
		return 0, fmt.Errorf("decimals must be a whole number")
	}
	if v < 0 || v > MaxDecimals {
		return 0, fmt.Errorf("decimals must be between 0 and %d", MaxDecimals)
	}
	return uint8(v), nil
}

// parseTotalSupply coerces the total supply text field.
func parseTotalSupply(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("supply must be a number")
	}
	if v <= 0 {
		return 0, fmt.Errorf("supply must be positive")
	}
	return v, nil
}
