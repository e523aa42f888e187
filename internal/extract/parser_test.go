package extract

import (
	"testing"
)

func TestParseCandidates(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantCount int
		wantErr   bool
	}{
		{
			name:      "bare array",
			raw:       `[{"index":1,"cardLast4":"4521","amount":12550,"dueDate":"2024-02-05","minDue":630}]`,
			wantCount: 1,
		},
		{
			name: "fenced array",
			raw: "```json\n" +
				`[{"index":1,"cardLast4":"4521","amount":12550,"dueDate":"","minDue":0}]` +
				"\n```",
			wantCount: 1,
		},
		{
			name:      "surrounding prose",
			raw:       `Here are the extracted bills: [{"index":2,"cardLast4":"85","amount":900,"dueDate":"","minDue":0}] Let me know if you need more.`,
			wantCount: 1,
		},
		{
			name:    "no array at all",
			raw:     "I could not find any billing statements in these messages.",
			wantErr: true,
		},
		{
			name:    "broken json",
			raw:     `[{"index":1,"cardLast4":`,
			wantErr: true,
		},
		{
			name:      "empty array",
			raw:       "[]",
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCandidates(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != tt.wantCount {
				t.Errorf("expected %d candidates, got %d", tt.wantCount, len(got))
			}
		})
	}
}

func TestParseCandidatesFields(t *testing.T) {
	raw := `[{"index":3,"cardLast4":"4521","amount":1000.5,"dueDate":"2024-03-05","minDue":100}]`
	got, err := ParseCandidates(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}
	c := got[0]
	if c.Index != 3 || c.CardLast4 != "4521" || c.Amount != 1000.5 || c.DueDate != "2024-03-05" || c.MinDue != 100 {
		t.Errorf("candidate fields wrong: %+v", c)
	}
}
