package core

import (
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestParseAccountID tests account ID parsing
func TestParseAccountID(t *testing.T) {
	tests := []struct {
		input    string
		expected AccountID
		hasError bool
	}{
		{"acct-123", AccountID("acct-123"), false},
		{"", "", true},
		{"   ", "", true},
	}

	for _, test := range tests {
		result, err := ParseAccountID(test.input)
		if test.hasError && err == nil {
			t.Errorf("Expected error for input '%s', but got none", test.input)
		}
		if !test.hasError && err != nil {
			t.Errorf("Unexpected error for input '%s': %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, result)
		}
	}
}

// TestComputeFingerprintDeterminism tests fingerprints ignore map iteration order
func TestComputeFingerprintDeterminism(t *testing.T) {
	a := ComputeFingerprint("acct-1", map[string]float64{"spend": 10.5, "sales": 42.0})
	b := ComputeFingerprint("acct-1", map[string]float64{"sales": 42.0, "spend": 10.5})
	if a != b {
		t.Errorf("Expected identical fingerprints, got %s vs %s", a, b)
	}

	c := ComputeFingerprint("acct-2", map[string]float64{"spend": 10.5, "sales": 42.0})
	if a == c {
		t.Error("Expected fingerprint to change with account")
	}
}
