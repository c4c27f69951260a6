package classifier

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		text string
		want Category
	}{
		{"I need a price quote for support", Pricing},
		{"hello there", Other},
		{"What's the COST?", Pricing},
		{"my panel has an issue", Support},
		{"can I return this?", Refunds},
		{"what are your opening times", Hours},
		{"what's your phone number", Contact},
		{"hours?", Hours},
		{"", Other},
		{"   \t", Other},
	}

	for _, tc := range cases {
		if got := Classify(tc.text); got != tc.want {
			t.Errorf("Classify(%q) = %s, want %s", tc.text, got, tc.want)
		}
	}
}

func TestRuleOrder(t *testing.T) {
	want := []Category{Pricing, Support, Refunds, Hours, Contact, Other}
	got := Categories()
	if len(got) != len(want) {
		t.Fatalf("expected %d categories, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestClassifyDeterministic(t *testing.T) {
	text := "refund my support contract, email me"
	first := Classify(text)
	for i := 0; i < 100; i++ {
		if got := Classify(text); got != first {
			t.Fatalf("run %d: got %s, want %s", i, got, first)
		}
	}
	if first != Support {
		t.Errorf("expected support to win over refunds and contact, got %s", first)
	}
}
