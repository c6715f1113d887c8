package annotation

import (
	"math"
	"testing"
)

func TestCentroid(t *testing.T) {
	rec := New("P", "S", "SESS", "1")

	if _, ok := rec.Centroid(); ok {
		t.Error("Expected no centroid for empty record")
	}

	_ = rec.Set("C1", 0, 0, 0)
	_ = rec.Set("C2", 2, 4, 6)

	c, ok := rec.Centroid()
	if !ok {
		t.Fatal("Expected centroid for record with placed landmarks")
	}
	if c.X != 1 || c.Y != 2 || c.Z != 3 {
		t.Errorf("Expected centroid (1, 2, 3), got %+v", c)
	}
}

func TestSpan(t *testing.T) {
	rec := New("P", "S", "SESS", "1")

	if got := rec.Span(); got != 0 {
		t.Errorf("Expected zero span for empty record, got %v", got)
	}

	// C1 -> C2 is 5 units, C2 -> T1 is 12 units; unset labels in
	// between must not contribute.
	_ = rec.Set("C1", 0, 0, 0)
	_ = rec.Set("C2", 3, 4, 0)
	_ = rec.Set("T1", 3, 4, 12)

	got := rec.Span()
	if math.Abs(got-17) > 1e-9 {
		t.Errorf("Expected span 17, got %v", got)
	}
}
