package file_generators

import (
	"bytes"
	"testing"
	"time"

	"github.com/muktihari/fit/decoder"
	"github.com/muktihari/fit/profile/mesgdef"
	"github.com/muktihari/fit/profile/typedef"
	"github.com/muktihari/fit/proto"

	"github.com/Megloux/mosaic/pkg/routine"
)

func testRoutine() *routine.Routine {
	return &routine.Routine{
		Name: "Push",
		Type: routine.TypeHypertrophy,
		Days: []string{"mon"},
		Exercises: []routine.Exercise{
			{ExerciseID: "bench-press", Name: "Bench Press", Sets: 3, Reps: 10, RestSeconds: 90, WeightKg: 60},
			{ExerciseID: "plank", Name: "Plank", Sets: 1, Reps: 0},
		},
	}
}

func decode(t *testing.T, data []byte) *proto.FIT {
	t.Helper()
	if len(data) == 0 {
		t.Fatal("Expected non-empty FIT file result")
	}
	fitData, err := decoder.New(bytes.NewReader(data)).Decode()
	if err != nil {
		t.Fatalf("Failed to decode generated FIT file: %v", err)
	}
	return fitData
}

func TestGenerateWorkoutFile(t *testing.T) {
	result, err := GenerateWorkoutFile(testRoutine(), time.Now())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	fitData := decode(t, result)

	var workouts int
	var steps []*mesgdef.WorkoutStep
	for i := range fitData.Messages {
		switch fitData.Messages[i].Num {
		case typedef.MesgNumWorkout:
			workouts++
		case typedef.MesgNumWorkoutStep:
			steps = append(steps, mesgdef.NewWorkoutStep(&fitData.Messages[i]))
		}
	}

	if workouts != 1 {
		t.Errorf("Expected 1 Workout message, got %d", workouts)
	}
	// bench: reps, rest, repeat; plank: open
	if len(steps) != 4 {
		t.Fatalf("Expected 4 WorkoutStep messages, got %d", len(steps))
	}

	if steps[0].DurationType != typedef.WktStepDurationReps || steps[0].DurationValue != 10 {
		t.Errorf("first step should be 10 reps, got %v/%d", steps[0].DurationType, steps[0].DurationValue)
	}
	if steps[0].WktStepName != "Bench Press" || steps[0].ExerciseCategory != typedef.ExerciseCategoryBenchPress {
		t.Errorf("unexpected first step %q / %v", steps[0].WktStepName, steps[0].ExerciseCategory)
	}
	if steps[1].Intensity != typedef.IntensityRest || steps[1].DurationValue != 90000 {
		t.Errorf("second step should be 90s rest, got %v/%d", steps[1].Intensity, steps[1].DurationValue)
	}
	if steps[2].DurationType != typedef.WktStepDurationRepeatUntilStepsCmplt || steps[2].DurationValue != 0 || steps[2].TargetValue != 3 {
		t.Errorf("third step should repeat from 0 three times, got %v/%d/%d", steps[2].DurationType, steps[2].DurationValue, steps[2].TargetValue)
	}
	if steps[3].DurationType != typedef.WktStepDurationOpen {
		t.Errorf("exercise without reps should be open, got %v", steps[3].DurationType)
	}
}

func TestGenerateSessionFile(t *testing.T) {
	start := time.Date(2026, 3, 2, 7, 30, 0, 0, time.UTC)
	result, err := GenerateSessionFile(testRoutine(), start)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	fitData := decode(t, result)

	var activeSets, restSets, sessionCount, activityCount, lapCount int
	for i, msg := range fitData.Messages {
		switch msg.Num {
		case typedef.MesgNumSet:
			set := mesgdef.NewSet(&fitData.Messages[i])
			if set.SetType == typedef.SetTypeRest {
				restSets++
			} else {
				activeSets++
			}
		case typedef.MesgNumSession:
			sessionCount++
		case typedef.MesgNumActivity:
			activityCount++
		case typedef.MesgNumLap:
			lapCount++
		}
	}

	if activeSets != 4 {
		t.Errorf("Expected 4 active sets, got %d", activeSets)
	}
	if restSets != 3 {
		t.Errorf("Expected 3 rest sets, got %d", restSets)
	}
	if sessionCount != 1 || activityCount != 1 || lapCount != 1 {
		t.Errorf("Expected one session, activity and lap, got %d/%d/%d", sessionCount, activityCount, lapCount)
	}
}

func TestGenerate_Invalid(t *testing.T) {
	if _, err := GenerateWorkoutFile(nil, time.Now()); err == nil {
		t.Error("nil routine should fail")
	}
	if _, err := GenerateSessionFile(&routine.Routine{Name: "Empty"}, time.Now()); err == nil {
		t.Error("routine without exercises should fail")
	}
}

func TestMapExerciseToCategory(t *testing.T) {
	tests := []struct {
		name string
		want typedef.ExerciseCategory
	}{
		{"Bench Press", typedef.ExerciseCategoryBenchPress},
		{"RDL", typedef.ExerciseCategoryDeadlift},
		{"ohp", typedef.ExerciseCategoryShoulderPress},
		{"Bulgarian Split Squat", typedef.ExerciseCategoryLunge},
		{"back-squat", typedef.ExerciseCategorySquat},
		{"Underwater Basket Weaving", typedef.ExerciseCategoryUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapExerciseToCategory(tt.name); got != tt.want {
				t.Errorf("MapExerciseToCategory(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}
