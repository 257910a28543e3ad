package match

import "testing"

func TestScore(t *testing.T) {
	cases := []struct {
		name  string
		query string
		cand  string
		want  float64
	}{
		{"exact", "Acme", "Acme", 1.0},
		{"case insensitive", "ACME", "acme", 1.0},
		{"disjoint", "Acme", "Globex", 0},
		{"extra query token", "Acme B.V.", "Acme", 0.5},
		{"extra candidate token", "Acme", "Acme Consulting", 0.5},
		{"substring token", "Consult", "Acme Consulting", 0.5},
		{"empty query", "", "Acme", 0},
		{"empty candidate", "Acme", "", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Score(tc.query, tc.cand); got != tc.want {
				t.Errorf("Score(%q, %q) = %v, want %v", tc.query, tc.cand, got, tc.want)
			}
		})
	}
}

func TestRankOrdersByScore(t *testing.T) {
	m := NewMatcher(5, nil)
	records := []Record{
		{ID: "1", Name: "Globex"},
		{ID: "2", Name: "Acme Consulting"},
		{ID: "3", Name: "Acme"},
	}
	ranked := m.Rank("Acme", records)
	if len(ranked) != 2 {
		t.Fatalf("got %d candidates, want 2", len(ranked))
	}
	if ranked[0].ID != "3" || ranked[0].MatchScore != 1.0 {
		t.Errorf("top candidate = %+v, want id 3 score 1.0", ranked[0])
	}
	if ranked[1].ID != "2" || ranked[1].MatchScore != 0.5 {
		t.Errorf("second candidate = %+v, want id 2 score 0.5", ranked[1])
	}
}

func TestRankTiesKeepCatalogOrder(t *testing.T) {
	m := NewMatcher(5, nil)
	records := []Record{
		{ID: "a", Name: "Acme North"},
		{ID: "b", Name: "Acme South"},
	}
	ranked := m.Rank("Acme", records)
	if len(ranked) != 2 {
		t.Fatalf("got %d candidates, want 2", len(ranked))
	}
	if ranked[0].ID != "a" || ranked[1].ID != "b" {
		t.Errorf("tie order = %s, %s; want a, b", ranked[0].ID, ranked[1].ID)
	}
}

func TestRankCapsCandidates(t *testing.T) {
	m := NewMatcher(2, nil)
	records := []Record{
		{ID: "1", Name: "Acme One"},
		{ID: "2", Name: "Acme Two"},
		{ID: "3", Name: "Acme Three"},
	}
	if got := m.Rank("Acme", records); len(got) != 2 {
		t.Fatalf("got %d candidates, want cap of 2", len(got))
	}
}

func TestRankEmptyQuery(t *testing.T) {
	m := NewMatcher(5, nil)
	if got := m.Rank("   ", []Record{{ID: "1", Name: "Acme"}}); got != nil {
		t.Fatalf("got %v, want nil", got)
	}
}

func TestBestThreshold(t *testing.T) {
	m := NewMatcher(5, nil)
	records := []Record{{ID: "1", Name: "Acme Consulting"}}

	if best := m.Best("Acme", records, 0.8); best != nil {
		t.Errorf("below threshold, got %+v, want nil", best)
	}
	best := m.Best("Acme Consulting", records, 0.8)
	if best == nil {
		t.Fatal("above threshold, got nil")
	}
	if best.ID != "1" || best.MatchScore != 1.0 {
		t.Errorf("best = %+v, want id 1 score 1.0", best)
	}
}
