package ground

import (
	"testing"
	"time"

	"github.com/Veraticus/due-process/internal/extract"
	"github.com/Veraticus/due-process/internal/model"
)

func fixedClock() func() time.Time {
	at := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func TestGroundRejectsHallucinatedTail(t *testing.T) {
	v := NewValidatorAt(fixedClock())
	originals := []model.RawMessage{
		{ID: "m1", Body: "Your Credit Card XX4521 statement: Total due: Rs.12,550 by 05-Feb"},
	}
	candidates := []extract.Candidate{
		{Index: 1, CardLast4: "9999", Amount: 500},
	}

	// "9999" does not occur in the body: the claimed tail is a
	// hallucination and the whole candidate is dropped, even though the
	// body carries a derivable marker.
	facts := v.Ground(candidates, originals)
	if len(facts) != 0 {
		t.Fatalf("hallucinated tail must drop the candidate, got %v", facts)
	}
}

func TestGroundDropsUnconfirmableTail(t *testing.T) {
	v := NewValidatorAt(fixedClock())
	originals := []model.RawMessage{
		{ID: "m1", Body: "Your Credit Card statement total due Rs.500"},
	}
	candidates := []extract.Candidate{
		{Index: 1, CardLast4: "9999", Amount: 500},
	}

	facts := v.Ground(candidates, originals)
	if len(facts) != 0 {
		t.Fatalf("candidate without confirmable tail must be dropped, got %v", facts)
	}
}

func TestGroundCorrectsAmountFromSource(t *testing.T) {
	v := NewValidatorAt(fixedClock())
	originals := []model.RawMessage{
		{ID: "m1", Body: "Credit Card XX4521 Total due: Rs.12,550 by 05-Feb. Min due Rs.630"},
	}
	candidates := []extract.Candidate{
		{Index: 1, CardLast4: "4521", Amount: 500, MinDue: 630},
	}

	facts := v.Ground(candidates, originals)
	if len(facts) != 1 {
		t.Fatalf("expected 1 fact, got %d", len(facts))
	}
	if facts[0].Amount != 12550 {
		t.Errorf("amount should be corrected to max scanned 12550, got %v", facts[0].Amount)
	}
	if facts[0].MinDue != 630 {
		t.Errorf("min due matches a source token, should be kept: got %v", facts[0].MinDue)
	}
}

func TestGroundKeepsAmountWithinTolerance(t *testing.T) {
	v := NewValidatorAt(fixedClock())
	originals := []model.RawMessage{
		{ID: "m1", Body: "Credit Card XX4521 Total due: Rs.1,000"},
	}
	candidates := []extract.Candidate{
		{Index: 1, CardLast4: "4521", Amount: 1050},
	}

	facts := v.Ground(candidates, originals)
	if len(facts) != 1 {
		t.Fatalf("expected 1 fact, got %d", len(facts))
	}
	if facts[0].Amount != 1050 {
		t.Errorf("amount within 10%% tolerance should be kept as extracted, got %v", facts[0].Amount)
	}
}

func TestGroundDerivesShortTail(t *testing.T) {
	v := NewValidatorAt(fixedClock())
	originals := []model.RawMessage{
		{ID: "m1", Body: "Credit Card ending 85: statement Total Due Rs.900"},
	}
	candidates := []extract.Candidate{
		{Index: 1, CardLast4: "", Amount: 900},
	}

	facts := v.Ground(candidates, originals)
	if len(facts) != 1 {
		t.Fatalf("expected 1 fact, got %d", len(facts))
	}
	if facts[0].CardTail != "85" {
		t.Errorf("expected derived tail 85, got %q", facts[0].CardTail)
	}
}

func TestGroundDueDates(t *testing.T) {
	v := NewValidatorAt(fixedClock())
	originals := []model.RawMessage{
		{ID: "m1", Body: "Credit Card XX4521 Total Due Rs.900 due by 2024-02-05"},
	}

	tests := []struct {
		name     string
		dueDate  string
		wantNil  bool
		wantDate string
	}{
		{name: "valid date kept", dueDate: "2024-02-05", wantDate: "2024-02-05"},
		{name: "far future kept with warning", dueDate: "2024-08-01", wantDate: "2024-08-01"},
		{name: "unparseable dropped", dueDate: "next tuesday", wantNil: true},
		{name: "empty absent", dueDate: "", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facts := v.Ground([]extract.Candidate{
				{Index: 1, CardLast4: "4521", Amount: 900, DueDate: tt.dueDate},
			}, originals)
			if len(facts) != 1 {
				t.Fatalf("expected 1 fact, got %d", len(facts))
			}
			if tt.wantNil {
				if facts[0].DueDate != nil {
					t.Errorf("expected nil due date, got %v", facts[0].DueDate)
				}
				return
			}
			if facts[0].DueDate == nil {
				t.Fatal("expected a due date, got nil")
			}
			if got := facts[0].DueDate.Format("2006-01-02"); got != tt.wantDate {
				t.Errorf("due date = %s, want %s", got, tt.wantDate)
			}
		})
	}
}

func TestGroundMisindexedCandidate(t *testing.T) {
	v := NewValidatorAt(fixedClock())
	originals := []model.RawMessage{
		{ID: "m1", Body: "Credit Card XX4521 Total Due Rs.900"},
	}
	candidates := []extract.Candidate{
		{Index: 5, CardLast4: "4521", Amount: 900},
		{Index: 0, CardLast4: "4521", Amount: 900},
	}

	if facts := v.Ground(candidates, originals); len(facts) != 0 {
		t.Fatalf("misindexed candidates must be dropped, got %v", facts)
	}
}
