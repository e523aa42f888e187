package ground

import (
	"testing"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		token   string
		want    float64
		wantErr bool
	}{
		{token: "12,550", want: 12550},
		{token: "1,000.50", want: 1000.5},
		{token: "630", want: 630},
		{token: "0.99", want: 0.99},
		{token: "abc", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseAmount(tt.token)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseAmount(%q) expected error, got %v", tt.token, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAmount(%q) unexpected error: %v", tt.token, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAmount(%q) = %v, want %v", tt.token, got, tt.want)
		}
	}
}

func TestScanAmounts(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []float64
	}{
		{
			name: "rupee prefix with dot",
			body: "Total due: Rs.12,550 by 05-Feb. Min due Rs.630",
			want: []float64{12550, 630},
		},
		{
			name: "unicode rupee with decimal",
			body: "Pay ₹1,000.50 now",
			want: []float64{1000.5},
		},
		{
			name: "currency code prefix",
			body: "INR 4500 due, min INR 225",
			want: []float64{4500, 225},
		},
		{
			name: "no currency marker no match",
			body: "Card ending 4521, call 1800 4521",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScanAmounts(tt.body)
			if len(got) != len(tt.want) {
				t.Fatalf("ScanAmounts(%q) = %v, want %v", tt.body, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ScanAmounts(%q)[%d] = %v, want %v", tt.body, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestWithinTolerance(t *testing.T) {
	scanned := []float64{1000}

	if !withinTolerance(1050, scanned, 0.10) {
		t.Error("5% drift should be within 10% tolerance")
	}
	if withinTolerance(1500, scanned, 0.10) {
		t.Error("50% drift should exceed 10% tolerance")
	}
	if withinTolerance(500, nil, 0.10) {
		t.Error("no scanned amounts can never be within tolerance")
	}
}
