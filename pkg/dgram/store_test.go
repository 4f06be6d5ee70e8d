package dgram

import (
	"testing"
)

func TestStoreRoundTrip(t *testing.T) {
	s := NewStore()

	if _, ok := s.Get("missing"); ok {
		t.Error("empty store should not resolve keys")
	}

	s.Set("count", 41)
	v, ok := s.Get("count")
	if !ok || v.(int) != 41 {
		t.Errorf("got %v, want 41", v)
	}

	s.Set("count", 42)
	if v, _ := s.Get("count"); v.(int) != 42 {
		t.Errorf("overwrite failed: got %v", v)
	}

	s.Delete("count")
	if _, ok := s.Get("count"); ok {
		t.Error("deleted key still resolvable")
	}
}

func TestStoreFlush(t *testing.T) {
	s := NewStore()
	s.Set("a", 1)
	s.Set("b", 2)
	s.Flush()

	if _, ok := s.Get("a"); ok {
		t.Error("flush left key a behind")
	}
	if _, ok := s.Get("b"); ok {
		t.Error("flush left key b behind")
	}
}
