package canvas

import "testing"

func TestFontCacheRoundsSizes(t *testing.T) {
	fc := newFontCache()

	a, err := fc.face(12.2)
	if err != nil {
		t.Fatal(err)
	}
	b, err := fc.face(11.6)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("12.2 and 11.6 got different faces")
	}
	if a.Size() != 12 {
		t.Errorf("face size = %v, want 12", a.Size())
	}

	tiny, err := fc.face(0.2)
	if err != nil {
		t.Fatal(err)
	}
	if tiny.Size() != 1 {
		t.Errorf("face size for 0.2 = %v, want 1", tiny.Size())
	}
}

func TestFontCacheIsBounded(t *testing.T) {
	fc := newFontCache()
	for i := 0; i < 2000; i++ {
		if _, err := fc.face(1 + float64(i)*0.25); err != nil {
			t.Fatal(err)
		}
	}
	if n := len(fc.faces); n > maxFaces {
		t.Errorf("cache holds %d faces, want at most %d", n, maxFaces)
	}
}
