// Package token defines SPL token creation parameters and their validation.
package token

// Field length and range limits for token parameters.
const (
	MaxNameLen   = 32
	MaxSymbolLen = 10
	MaxDecimals  = 9
)

// RawInput holds token parameters exactly as entered, before coercion.
// Numeric fields arrive as text and are coerced during validation.
type RawInput struct {
	Name        string
	Symbol      string
	Decimals    string
	TotalSupply string
	Description string
	ImageURL    string
}

// Params is a validated, coerced set of token parameters ready for the
// creation pipeline.
type Params struct {
	Name        string
	Symbol      string
	Decimals    uint8
	TotalSupply float64
	Description string
	ImageURL    string
}
