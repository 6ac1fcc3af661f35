package contract

import (
	"testing"
)

// FuzzParseBoolString fuzzes ParseBoolString; it must never panic and must agree with itself.
func FuzzParseBoolString(f *testing.F) {
	for _, seed := range []string{"yes", "no", "true", "false", "1", "0", "", "YeS", "nope"} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, s string) {
		a, errA := ParseBoolString(s)
		b, errB := ParseBoolString(s)
		if a != b || (errA == nil) != (errB == nil) {
			t.Fatalf("ParseBoolString(%q) not deterministic", s)
		}
	})
}
