package transcript

import "testing"

func TestClean_CollapsesWhitespace(t *testing.T) {
	got := Clean("hello   world\t\tagain\n\nplease")
	want := "hello world again please"
	if got != want {
		t.Errorf("expected '%s', got '%s'", want, got)
	}
}

func TestClean_ShortTextUntouched(t *testing.T) {
	// At 10 words or fewer the repeat scan is skipped entirely.
	in := "go go go go go go go go go go"
	if got := Clean(in); got != in {
		t.Errorf("expected short text untouched, got '%s'", got)
	}
}

func TestClean_DropsTrailingRepeatedPhrase(t *testing.T) {
	in := "this is the real content and then thank you for watching thank you for watching"
	want := "this is the real content and then thank you for watching"
	if got := Clean(in); got != want {
		t.Errorf("expected '%s', got '%s'", want, got)
	}
}

func TestClean_OneBlockPerPatternLength(t *testing.T) {
	// Four copies of a 3-word phrase: only one trailing block is removed
	// for pattern length 3; the remaining copies survive that pass.
	in := "a b c a b c a b c a b c"
	want := "a b c a b c a b c"
	if got := Clean(in); got != want {
		t.Errorf("expected '%s', got '%s'", want, got)
	}
}

func TestClean_InteriorRepeatKept(t *testing.T) {
	in := "thank you for watching thank you for watching but the ending here is unique today"
	if got := Clean(in); got != in {
		t.Errorf("expected interior repeat kept, got '%s'", got)
	}
}

func TestClean_Idempotent(t *testing.T) {
	inputs := []string{
		"this is the real content and then thank you for watching thank you for watching",
		"a b c a b c a b c a b c",
		"hello   world",
		"",
	}
	for _, in := range inputs {
		once := Clean(in)
		twice := Clean(once)
		if once != twice {
			t.Errorf("Clean not idempotent for '%s': '%s' != '%s'", in, once, twice)
		}
	}
}

func TestClean_Empty(t *testing.T) {
	if got := Clean(""); got != "" {
		t.Errorf("expected empty, got '%s'", got)
	}
	if got := Clean("   \n\t  "); got != "" {
		t.Errorf("expected empty from whitespace, got '%s'", got)
	}
}
