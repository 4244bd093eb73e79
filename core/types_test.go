package core

import "testing"

func TestNormalizeUserID(t *testing.T) {
	id, err := NormalizeUserID(" Alice ")
	if err != nil || id != "alice" {
		t.Fatalf("got %v %v", id, err)
	}
	if _, err := NormalizeUserID("   "); err == nil {
		t.Fatalf("expected empty error")
	}
}

func TestValidateBadgeKey(t *testing.T) {
	if err := ValidateBadgeKey(BadgeNiceAnswer); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := ValidateBadgeKey("bad badge"); err == nil {
		t.Fatalf("expected invalid key err")
	}
	if err := ValidateBadgeKey("  "); err == nil {
		t.Fatalf("expected empty key err")
	}
}

func TestScopeString(t *testing.T) {
	if ScopeLifetime.String() != "per-user-lifetime" {
		t.Fatalf("got %s", ScopeLifetime)
	}
	if ScopeContent.String() != "per-content-item" {
		t.Fatalf("got %s", ScopeContent)
	}
}

func TestValidKind(t *testing.T) {
	for _, k := range []EventKind{
		EventVoteUp, EventVoteDown, EventVoteRetractUp, EventVoteRetractDown,
		EventAcceptAnswer, EventDeleteContent, EventViewContent,
	} {
		if !ValidKind(k) {
			t.Fatalf("kind %s should be valid", k)
		}
	}
	if ValidKind("badge_awarded") {
		t.Fatal("unknown kind should be invalid")
	}
}

func TestEventConstructors(t *testing.T) {
	ev := NewVoteUp("alice", "q1", KindQuestion)
	if ev.Kind != EventVoteUp || ev.Actor != "alice" || ev.Content != "q1" || ev.Delta != 1 {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.Time.IsZero() {
		t.Fatal("constructor should stamp time")
	}
	if NewVoteDown("a", "q1", KindQuestion).Delta != -1 {
		t.Fatal("downvote delta should be -1")
	}
	if NewAcceptAnswer("a", "ans").ContentKind != KindAnswer {
		t.Fatal("accept is always answer-kind")
	}
	if NewViewContent("a", "q1").ContentKind != KindQuestion {
		t.Fatal("view is always question-kind")
	}
}
