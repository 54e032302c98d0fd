package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/muktihari/fit/decoder"

	"github.com/Megloux/mosaic/pkg/domain/file_generators"
	"github.com/Megloux/mosaic/pkg/routine"
)

func TestInspect(t *testing.T) {
	r := &routine.Routine{
		Name: "Pull",
		Type: routine.TypeStrength,
		Exercises: []routine.Exercise{
			{ExerciseID: "deadlift", Name: "Deadlift", Sets: 2, Reps: 5, RestSeconds: 120, WeightKg: 140},
		},
	}

	workout, err := file_generators.GenerateWorkoutFile(r, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	session, err := file_generators.GenerateSessionFile(r, time.Now())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		data []byte
		want []string
	}{
		{"workout", workout, []string{"Workout: Pull (3 steps)", "Deadlift"}},
		{"session", session, []string{"Active sets: 2, rest periods: 2", "Repetitions", "WeightKg"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fitData, err := decoder.New(bytes.NewReader(tt.data)).Decode()
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			var out bytes.Buffer
			inspect(&out, fitData)
			for _, want := range tt.want {
				if !strings.Contains(out.String(), want) {
					t.Errorf("output missing %q:\n%s", want, out.String())
				}
			}
		})
	}
}
