package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRoutine(t *testing.T) {
	r, err := loadRoutine("", "strength-5x5")
	if err != nil {
		t.Fatalf("template: %v", err)
	}
	if r.TemplateID != "strength-5x5" || len(r.Exercises) == 0 {
		t.Errorf("unexpected routine %+v", r)
	}

	path := filepath.Join(t.TempDir(), "routine.json")
	doc := `{"name":"Mine","type":"custom","exercises":[{"exercise_id":"squat","sets":3,"reps":5}]}`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	r, err = loadRoutine(path, "")
	if err != nil {
		t.Fatalf("input: %v", err)
	}
	if r.Name != "Mine" || r.Exercises[0].Reps != 5 {
		t.Errorf("unexpected routine %+v", r)
	}

	for _, tc := range []struct{ input, template string }{
		{"", ""},
		{"", "nope"},
		{filepath.Join(t.TempDir(), "missing.json"), ""},
	} {
		if _, err := loadRoutine(tc.input, tc.template); err == nil {
			t.Errorf("loadRoutine(%q, %q) should fail", tc.input, tc.template)
		}
	}
}
