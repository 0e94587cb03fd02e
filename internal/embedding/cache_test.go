package embedding

import "testing"

func TestTextCache_GetSet(t *testing.T) {
	c := NewTextCache(2)

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss on empty cache")
	}

	c.Set("a", []float32{1})
	c.Set("b", []float32{2})

	if v, ok := c.Get("a"); !ok || v[0] != 1 {
		t.Errorf("expected hit for a, got %v %v", v, ok)
	}
}

func TestTextCache_EvictsOldest(t *testing.T) {
	c := NewTextCache(2)
	c.Set("a", []float32{1})
	c.Set("b", []float32{2})
	_, _ = c.Get("a") // a is now most recently used
	c.Set("c", []float32{3})

	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("expected a to survive")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("expected c to be present")
	}
}

func TestTextCache_UpdateExisting(t *testing.T) {
	c := NewTextCache(2)
	c.Set("a", []float32{1})
	c.Set("a", []float32{9})
	if v, _ := c.Get("a"); v[0] != 9 {
		t.Errorf("expected updated value, got %v", v)
	}
}

func TestWordTokenizer_Padding(t *testing.T) {
	tok := &WordTokenizer{}
	ids, mask := tok.Tokenize("xin chào thế giới", 8)
	if len(ids) != 8 || len(mask) != 8 {
		t.Fatalf("expected padded length 8, got %d/%d", len(ids), len(mask))
	}
	if ids[0] != tokenBOS || mask[0] != 1 {
		t.Error("expected BOS at position 0")
	}
	// 4 words + BOS + EOS attended
	var attended int64
	for _, m := range mask {
		attended += m
	}
	if attended != 6 {
		t.Errorf("expected 6 attended positions, got %d", attended)
	}
}

func TestWordTokenizer_Truncation(t *testing.T) {
	tok := &WordTokenizer{}
	ids, _ := tok.Tokenize("a b c d e f g h i j", 4)
	if len(ids) != 4 {
		t.Fatalf("expected length 4, got %d", len(ids))
	}
}
