// Package preview projects token form state into a read-only summary.
// It never validates and never mutates; incomplete data renders as
// placeholders.
package preview

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"spl-token-forge/internal/token"
)

// PlaceholderImage is shown when no image source is set.
const PlaceholderImage = "https://via.placeholder.com/400"

// Summary is the human-readable projection of token parameters.
type Summary struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Decimals    string `json:"decimals"`
	TotalSupply string `json:"totalSupply"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

var printer = message.NewPrinter(language.English)

// FromRaw builds a Summary from raw form state. Numeric fields that do not
// parse are shown as typed; the supply is formatted with grouping
// separators.
func FromRaw(in token.RawInput, imagePreview string) Summary {
	s := Summary{
		Name:        in.Name,
		Symbol:      in.Symbol,
		Decimals:    strings.TrimSpace(in.Decimals),
		Description: in.Description,
		Image:       imagePreview,
	}

	if s.Image == "" {
		s.Image = PlaceholderImage
	}

	supply := strings.TrimSpace(in.TotalSupply)
	if v, err := strconv.ParseFloat(supply, 64); err == nil {
		s.TotalSupply = printer.Sprint(number.Decimal(v))
	} else {
		s.TotalSupply = supply
	}

	return s
}

// FromParams builds a Summary from validated parameters.
func FromParams(p *token.Params, imagePreview string) Summary {
	return FromRaw(token.RawInput{
		Name:        p.Name,
		Symbol:      p.Symbol,
		Decimals:    strconv.Itoa(int(p.Decimals)),
		TotalSupply: strconv.FormatFloat(p.TotalSupply, 'f', -1, 64),
		Description: p.Description,
	}, imagePreview)
}

// Render formats the summary as an aligned text block for terminal output.
func (s Summary) Render() string {
	var sb strings.Builder
	sb.WriteString("Token Preview\n")
	writeField(&sb, "Name", s.Name)
	writeField(&sb, "Symbol", s.Symbol)
	writeField(&sb, "Decimals", s.Decimals)
	writeField(&sb, "Total Supply", s.TotalSupply)
	writeField(&sb, "Description", s.Description)
	writeField(&sb, "Image", s.Image)
	return sb.String()
}

func writeField(sb *strings.Builder, label, value string) {
	if value == "" {
		value = "-"
	}
	fmt.Fprintf(sb, "  %-13s %s\n", label+":", value)
}
