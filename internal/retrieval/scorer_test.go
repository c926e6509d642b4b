package retrieval

import (
	"reflect"
	"testing"
)

func TestTokenize_DropsStopWordsKeepsMathTerms(t *testing.T) {
	s := NewScorer()
	got := s.Tokenize("What is the sum of the first ten numbers?")
	want := []string{"sum", "first", "ten", "numbers"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}
}

func TestTokenize_StripsPunctuationAndShortTokens(t *testing.T) {
	s := NewScorer()
	got := s.Tokenize("1/2 + 1/3 = 5/6, right?")
	// Single characters drop; digits paired by the slash survive as
	// separate tokens only when longer than one character.
	for _, tok := range got {
		if len(tok) <= 1 {
			t.Errorf("single-character token %q survived", tok)
		}
	}
}

func TestQueryTerms_AddsStemVariants(t *testing.T) {
	s := NewScorer()
	got := s.QueryTerms("comparing fractions")
	wantContains := []string{"comparing", "compar", "fractions", "fraction"}
	for _, w := range wantContains {
		found := false
		for _, g := range got {
			if g == w {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected query terms to contain %q, got %v", w, got)
		}
	}
}

func TestSuffixStemmer_SafetyBounds(t *testing.T) {
	st := SuffixStemmer{}
	if got := st.Stem("sing"); len(got) != 1 {
		t.Errorf("short -ing word should not be stripped, got %v", got)
	}
	if got := st.Stem("class"); len(got) != 1 {
		t.Errorf("-ss word should not be stripped, got %v", got)
	}
	if got := st.Stem("quickly"); len(got) != 2 || got[1] != "quick" {
		t.Errorf("expected [quickly quick], got %v", got)
	}
}

func TestScore_RelevanceOrdering(t *testing.T) {
	s := NewScorer()
	terms := s.QueryTerms("addition")

	relevant := Chunk{
		Content:    "Addition is combining two numbers to find their total. Addition problems use the plus sign.",
		PageNumber: 10,
	}
	unrelated := Chunk{
		Content:    "Photosynthesis converts sunlight into chemical energy inside green plants.",
		PageNumber: 11,
	}

	rs := s.Score(relevant, terms, Boosts{})
	us := s.Score(unrelated, terms, Boosts{})
	if rs.Score <= us.Score {
		t.Errorf("relevant chunk should outscore unrelated: %.4f vs %.4f", rs.Score, us.Score)
	}
	if us.Score != 0 {
		t.Errorf("unrelated chunk should score 0, got %.4f", us.Score)
	}
	if len(rs.MatchedTerms) == 0 {
		t.Error("expected matched terms on relevant chunk")
	}
}

func TestScore_LessonBoostStrictlyIncreases(t *testing.T) {
	s := NewScorer()
	terms := s.QueryTerms("addition")
	chunk := Chunk{
		Content:    "Addition combines two addends into a sum.",
		LessonID:   "lesson-7",
		PageNumber: 10,
	}

	base := s.Score(chunk, terms, Boosts{})
	boosted := s.Score(chunk, terms, Boosts{LessonID: "lesson-7"})
	other := s.Score(chunk, terms, Boosts{LessonID: "lesson-9"})

	if boosted.Score <= base.Score {
		t.Errorf("lesson match should strictly increase score: %.4f vs %.4f", boosted.Score, base.Score)
	}
	if other.Score != base.Score {
		t.Errorf("mismatched lesson should not boost: %.4f vs %.4f", other.Score, base.Score)
	}
}

func TestScore_PageProximityDecay(t *testing.T) {
	s := NewScorer()
	terms := s.QueryTerms("addition")
	content := "Addition combines two addends into a sum."
	current := 10

	near := s.Score(Chunk{Content: content, PageNumber: 11}, terms, Boosts{CurrentPage: &current})
	mid := s.Score(Chunk{Content: content, PageNumber: 20}, terms, Boosts{CurrentPage: &current})
	far := s.Score(Chunk{Content: content, PageNumber: 50}, terms, Boosts{CurrentPage: &current})
	base := s.Score(Chunk{Content: content, PageNumber: 50}, terms, Boosts{})

	if !(near.Score > mid.Score && mid.Score > far.Score) {
		t.Errorf("expected linear decay: near %.4f mid %.4f far %.4f", near.Score, mid.Score, far.Score)
	}
	if far.Score != base.Score {
		t.Errorf("outside the window there should be no boost: %.4f vs %.4f", far.Score, base.Score)
	}
}

func TestScore_ClampedToUnitInterval(t *testing.T) {
	s := NewScorer()
	s.LessonBoost = 50 // absurd tuning must still clamp
	terms := s.QueryTerms("sum sum sum")
	chunk := Chunk{Content: "sum sum sum sum", LessonID: "l1"}
	got := s.Score(chunk, terms, Boosts{LessonID: "l1"})
	if got.Score < 0 || got.Score > 1 {
		t.Errorf("score out of [0,1]: %.4f", got.Score)
	}
}

func TestScoreAll_DeterministicOrdering(t *testing.T) {
	s := NewScorer()
	terms := s.QueryTerms("fractions")
	chunks := []Chunk{
		{ID: "c3", PageNumber: 30, Content: "Fractions on a number line."},
		{ID: "c1", PageNumber: 10, Content: "Fractions on a number line."},
		{ID: "c2", PageNumber: 20, Content: "Decimals and place value."},
	}

	first := s.ScoreAll(chunks, terms, Boosts{})
	if first[0].Chunk.ID != "c1" || first[1].Chunk.ID != "c3" {
		t.Errorf("ties should break by ascending page: %v", ids(first))
	}
	for i := 0; i < 5; i++ {
		again := s.ScoreAll(chunks, terms, Boosts{})
		if !reflect.DeepEqual(ids(first), ids(again)) {
			t.Fatalf("ordering varied between runs: %v vs %v", ids(first), ids(again))
		}
	}
}

func ids(scored []ScoredChunk) []string {
	out := make([]string, len(scored))
	for i, sc := range scored {
		out[i] = sc.Chunk.ID
	}
	return out
}
