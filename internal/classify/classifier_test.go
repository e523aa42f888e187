package classify

import (
	"testing"

	"github.com/Veraticus/due-process/internal/model"
)

func TestIsCandidateStatement(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{
			name: "statement with total due",
			body: "Your Credit Card XX4521 statement: Total Due Rs.12,550 by 05-Feb",
			want: true,
		},
		{
			name: "positive patterns but payment received",
			body: "Credit Card XX4521 Total Due Rs.12,550. Payment received, thank you.",
			want: false,
		},
		{
			name: "otp message",
			body: "Your Credit Card OTP for statement download is 443211",
			want: false,
		},
		{
			name: "transaction alert",
			body: "Rs.890 spent on Credit Card XX4521 at AMAZON. Avl limit Rs.40,000",
			want: false,
		},
		{
			name: "bank statement without card signal",
			body: "Your account statement for Jan is ready",
			want: false,
		},
		{
			name: "min due phrasing",
			body: "HDFC Bank Credit Card ending 4521: Min Amt Due Rs.630, payable by 05-Feb-24",
			want: true,
		},
		{
			name: "reminder excluded",
			body: "Reminder: Credit Card XX4521 Total Due Rs.12,550 by 05-Feb",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCandidateStatement(tt.body); got != tt.want {
				t.Errorf("IsCandidateStatement(%q) = %v, want %v", tt.body, got, tt.want)
			}
		})
	}
}

func TestNarrowToCard(t *testing.T) {
	msgs := []model.RawMessage{
		{ID: "m1", Body: "Credit Card XX4521 Total Due Rs.500"},
		{ID: "m2", Body: "Credit Card XX9999 Total Due Rs.700"},
	}

	narrowed := NarrowToCard(msgs, "4521")
	if len(narrowed) != 1 || narrowed[0].ID != "m1" {
		t.Fatalf("expected only m1, got %v", narrowed)
	}

	all := NarrowToCard(msgs, "")
	if len(all) != 2 {
		t.Fatalf("empty target should be a no-op, got %d messages", len(all))
	}
}

func TestExcludeProcessed(t *testing.T) {
	msgs := []model.RawMessage{
		{ID: "m1"}, {ID: "m2"}, {ID: "m3"},
	}
	processed := map[model.MessageID]struct{}{
		"m1": {},
		"m3": {},
	}

	remaining := ExcludeProcessed(msgs, processed)
	if len(remaining) != 1 || remaining[0].ID != "m2" {
		t.Fatalf("expected only m2, got %v", remaining)
	}
}
