package token

import (
	"strings"
	"testing"
)

func validInput() RawInput {
	return RawInput{
		Name:        "Test Token",
		Symbol:      "TEST",
		Decimals:    "9",
		TotalSupply: "1000000",
		Description: "A test token",
	}
}

func TestParseAndValidate_Valid(t *testing.T) {
	params, errs := ParseAndValidate(validInput())
	if errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}

	if params.Name != "Test Token" {
		t.Errorf("Name = %q", params.Name)
	}
	if params.Symbol != "TEST" {
		t.Errorf("Symbol = %q", params.Symbol)
	}
	if params.Decimals != 9 {
		t.Errorf("Decimals = %d, want 9", params.Decimals)
	}
	if params.TotalSupply != 1000000 {
		t.Errorf("TotalSupply = %v, want 1000000", params.TotalSupply)
	}
}

func TestParseAndValidate_FieldRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RawInput)
		field  string
	}{
		{"empty name", func(in *RawInput) { in.Name = "" }, "name"},
		{"name too long", func(in *RawInput) { in.Name = strings.Repeat("a", 33) }, "name"},
		{"empty symbol", func(in *RawInput) { in.Symbol = "" }, "symbol"},
		{"symbol too long", func(in *RawInput) { in.Symbol = "ABCDEFGHIJK" }, "symbol"},
		{"decimals not a number", func(in *RawInput) { in.Decimals = "abc" }, "decimals"},
		{"decimals fractional", func(in *RawInput) { in.Decimals = "4.5" }, "decimals"},
		{"decimals negative", func(in *RawInput) { in.Decimals = "-1" }, "decimals"},
		{"decimals too large", func(in *RawInput) { in.Decimals = "10" }, "decimals"},
		{"supply not a number", func(in *RawInput) { in.TotalSupply = "lots" }, "totalSupply"},
		{"supply zero", func(in *RawInput) { in.TotalSupply = "0" }, "totalSupply"},
		{"supply negative", func(in *RawInput) { in.TotalSupply = "-5" }, "totalSupply"},
		{"invalid image url", func(in *RawInput) { in.ImageURL = "not a url" }, "imageUrl"},
		{"image url without host", func(in *RawInput) { in.ImageURL = "https://" }, "imageUrl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			params, errs := ParseAndValidate(in)
			if params != nil {
				t.Fatal("expected nil params")
			}
			if _, ok := errs[tt.field]; !ok {
				t.Errorf("expected error on field %q, got %v", tt.field, errs)
			}
		})
	}
}

func TestParseAndValidate_BoundaryLengths(t *testing.T) {
	in := validInput()
	in.Name = strings.Repeat("n", MaxNameLen)
	in.Symbol = strings.Repeat("s", MaxSymbolLen)

	if _, errs := ParseAndValidate(in); errs != nil {
		t.Fatalf("boundary lengths should be valid: %v", errs)
	}
}

func TestParseAndValidate_DecimalsRange(t *testing.T) {
	for _, d := range []string{"0", "9"} {
		in := validInput()
		in.Decimals = d
		if _, errs := ParseAndValidate(in); errs != nil {
			t.Errorf("decimals %s should be valid: %v", d, errs)
		}
	}
}

func TestParseAndValidate_EmptyImageURLAllowed(t *testing.T) {
	in := validInput()
	in.ImageURL = ""
	if _, errs := ParseAndValidate(in); errs != nil {
		t.Fatalf("empty image URL should be valid: %v", errs)
	}
}

func TestParseAndValidate_CollectsAllErrors(t *testing.T) {
	in := RawInput{Decimals: "x", TotalSupply: "y"}
	_, errs := ParseAndValidate(in)
	if len(errs) != 4 {
		t.Fatalf("expected 4 field errors, got %d: %v", len(errs), errs)
	}
}

func TestFieldErrors_StableOrder(t *testing.T) {
	errs := FieldErrors{"symbol": "b", "name": "a"}
	if got := errs.Error(); got != "name: a; symbol: b" {
		t.Errorf("Error() = %q", got)
	}
}
