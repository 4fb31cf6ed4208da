package core

import "testing"

func TestParseThreadPriority(t *testing.T) {
	cases := map[string]ThreadPriority{
		"":              ThreadPriorityNormal,
		"normal":        ThreadPriorityNormal,
		"LOW":           ThreadPriorityLow,
		" high ":        ThreadPriorityHigh,
		"interactive":   ThreadPriorityInteractive,
		"Interactive\n": ThreadPriorityInteractive,
	}
	for in, want := range cases {
		got, err := ParseThreadPriority(in)
		if err != nil || got != want {
			t.Errorf("ParseThreadPriority(%q) = %v, %v; want %v", in, got, err, want)
		}
		if back, _ := ParseThreadPriority(got.String()); back != got {
			t.Errorf("%v does not round-trip through String()", got)
		}
	}

	if _, err := ParseThreadPriority("realtime"); err == nil {
		t.Error("ParseThreadPriority(realtime) returned no error")
	}
	if got := ThreadPriority(9).String(); got != "ThreadPriority(9)" {
		t.Errorf("String() = %q", got)
	}
}
