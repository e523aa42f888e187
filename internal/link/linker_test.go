package link

import (
	"testing"
	"time"

	"github.com/Veraticus/due-process/internal/model"
)

func testLinker() *Linker {
	at := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	return NewAt(func() time.Time { return at })
}

func TestLinkExactMatch(t *testing.T) {
	cards := []model.Card{
		{ID: "c1", Last4: "4521"},
		{ID: "c2", Last4: "9999"},
	}
	facts := []model.ValidatedBillFact{
		{SMSID: "m1", CardTail: "9999", Amount: 700},
	}

	res := testLinker().Link(facts, cards)
	if len(res.Linked) != 1 || res.Linked[0].Card.ID != "c2" {
		t.Fatalf("expected link to c2, got %+v", res.Linked)
	}
	if len(res.NewPlaceholders) != 0 {
		t.Errorf("no placeholder expected, got %v", res.NewPlaceholders)
	}
}

func TestLinkPrefersExactOverSuffix(t *testing.T) {
	// "85" is a suffix of c1's tail, but c2 carries the literal tail "85":
	// the exact tier must win regardless of list order.
	cards := []model.Card{
		{ID: "c1", Last4: "3385"},
		{ID: "c2", Last4: "85"},
	}
	facts := []model.ValidatedBillFact{
		{SMSID: "m1", CardTail: "85", Amount: 700},
	}

	res := testLinker().Link(facts, cards)
	if res.Linked[0].Card.ID != "c2" {
		t.Fatalf("exact tail match should win, got card %s", res.Linked[0].Card.ID)
	}
}

func TestLinkShortTailSuffix(t *testing.T) {
	cards := []model.Card{
		{ID: "c1", Last4: "3385"},
	}
	facts := []model.ValidatedBillFact{
		{SMSID: "m1", CardTail: "85", Amount: 700},
	}

	res := testLinker().Link(facts, cards)
	if res.Linked[0].Card.ID != "c1" {
		t.Fatalf("suffix match should link to c1, got %+v", res.Linked[0].Card)
	}
}

func TestLinkOnePlaceholderPerTailPerRun(t *testing.T) {
	facts := []model.ValidatedBillFact{
		{SMSID: "m1", CardTail: "7777", Amount: 100},
		{SMSID: "m2", CardTail: "7777", Amount: 200},
		{SMSID: "m3", CardTail: "7777", Amount: 300},
	}

	res := testLinker().Link(facts, nil)
	if len(res.NewPlaceholders) != 1 {
		t.Fatalf("expected exactly one placeholder for shared tail, got %d", len(res.NewPlaceholders))
	}
	ph := res.NewPlaceholders[0]
	if !ph.IsPlaceholder || ph.Last4 != "7777" {
		t.Errorf("placeholder malformed: %+v", ph)
	}
	for _, lb := range res.Linked {
		if lb.Card.ID != ph.ID {
			t.Errorf("all facts with the same tail must share the placeholder, got %v", lb.Card.ID)
		}
	}
}
