package similarity

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  AI Trends in 2024  ", "ai trends in 2024"},
		{"Quantum\t\tComputing\n Advances", "quantum computing advances"},
		{"", ""},
		{"   ", ""},
		{"already normalized", "already normalized"},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestTokenize_SplitsOnNonAlphanumeric(t *testing.T) {
	set := Tokenize("web-scale APIs: v2.0, really!")
	for _, want := range []string{"web", "scale", "apis", "v2", "0", "really"} {
		if !set[want] {
			t.Errorf("expected token %q in %v", want, set)
		}
	}
}

func TestTokenize_DropsStopWords(t *testing.T) {
	set := Tokenize("the rise of an AI and the fall")
	for _, stop := range []string{"the", "of", "an", "and"} {
		if set[stop] {
			t.Errorf("stop word %q should be removed", stop)
		}
	}
	if !set["rise"] || !set["ai"] || !set["fall"] {
		t.Errorf("content tokens missing from %v", set)
	}
}

func TestJaccard_IdenticalTopics(t *testing.T) {
	if got := (Jaccard{}).Score("AI trends in 2024", "ai trends in 2024"); got != 1.0 {
		t.Errorf("expected 1.0, got %v", got)
	}
}

func TestJaccard_DisjointTopics(t *testing.T) {
	if got := (Jaccard{}).Score("quantum computing advances", "cooking recipes"); got != 0.0 {
		t.Errorf("expected 0.0, got %v", got)
	}
}

func TestJaccard_PartialOverlap(t *testing.T) {
	// {machine,learning,fundamentals} vs {machine,learning,basics}:
	// intersection 2, union 4.
	got := (Jaccard{}).Score("machine learning fundamentals", "machine learning basics")
	if got != 0.5 {
		t.Errorf("expected 0.5, got %v", got)
	}
}

func TestJaccard_EmptyUnion(t *testing.T) {
	// Both sides entirely stop words.
	if got := (Jaccard{}).Score("the and of", "an or"); got != 0.0 {
		t.Errorf("expected 0.0, got %v", got)
	}
}

func TestJaccard_Deterministic(t *testing.T) {
	first := (Jaccard{}).Score("Edge Computing for IoT", "edge computing in practice")
	for i := 0; i < 10; i++ {
		if got := (Jaccard{}).Score("Edge Computing for IoT", "edge computing in practice"); got != first {
			t.Fatalf("score changed between calls: %v vs %v", got, first)
		}
	}
}

func TestOverlap_UsesLargerSet(t *testing.T) {
	// {machine,learning} vs {machine,learning,basics}: common 2, max 3.
	got := (Overlap{}).Score("machine learning", "machine learning basics")
	want := 2.0 / 3.0
	if got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestOverlap_Empty(t *testing.T) {
	if got := (Overlap{}).Score("the", "and"); got != 0.0 {
		t.Errorf("expected 0.0, got %v", got)
	}
}

func TestByName(t *testing.T) {
	if ByName("overlap").Name() != "overlap" {
		t.Error("expected overlap metric")
	}
	if ByName("jaccard").Name() != "jaccard" {
		t.Error("expected jaccard metric")
	}
	if ByName("").Name() != "jaccard" {
		t.Error("expected jaccard as default")
	}
}
