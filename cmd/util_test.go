package cmd

import "testing"

func TestParseID(t *testing.T) {
	id, err := parseID("42")
	if err != nil {
		t.Fatalf("parseID() error = %v", err)
	}
	if id != 42 {
		t.Errorf("parseID() = %d, want 42", id)
	}

	if _, err := parseID("not-a-number"); err == nil {
		t.Error("parseID() expected an error for a non-numeric id")
	}
}

func TestParseRFC3339(t *testing.T) {
	if _, err := parseRFC3339("2026-07-30T09:00:00Z"); err != nil {
		t.Fatalf("parseRFC3339() error = %v", err)
	}
	if _, err := parseRFC3339("not-a-time"); err == nil {
		t.Error("parseRFC3339() expected an error for a malformed time")
	}
}
