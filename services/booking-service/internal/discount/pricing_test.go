package discount

import "testing"

func TestLabel(t *testing.T) {
	cases := []struct {
		name      string
		price     string
		available bool
		want      PriceLabel
	}{
		{"no discount", "25", false, PriceLabel{Original: "$25.00", Current: "$25.00"}},
		{"discount", "$25.00", true, PriceLabel{Original: "$25.00", Current: "$17.50", Struck: true, Marker: "-30%"}},
		{"rounding", "19.99", true, PriceLabel{Original: "$19.99", Current: "$13.99", Struck: true, Marker: "-30%"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Label(tc.price, 30, tc.available)
			if err != nil {
				t.Fatalf("label: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestLabel_InvalidPrice(t *testing.T) {
	if _, err := Label("free", 30, true); err == nil {
		t.Fatal("expected error for non-numeric price")
	}
	if _, err := ApplyPercentage("-5", 30); err == nil {
		t.Fatal("expected error for negative price")
	}
}
