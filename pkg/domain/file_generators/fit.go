package file_generators

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/muktihari/fit/encoder"
	"github.com/muktihari/fit/profile/mesgdef"
	"github.com/muktihari/fit/profile/typedef"
	"github.com/muktihari/fit/proto"

	"github.com/Megloux/mosaic/pkg/exercises"
	"github.com/Megloux/mosaic/pkg/routine"
)

// secondsPerRep estimates set duration in session files.
const secondsPerRep = 3

// GenerateWorkoutFile creates a FIT workout from a routine. Each exercise
// becomes a reps step, followed by a rest step when it prescribes rest and a
// repeat step when it has more than one set.
func GenerateWorkoutFile(r *routine.Routine, created time.Time) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("routine cannot be nil")
	}
	if len(r.Exercises) == 0 {
		return nil, fmt.Errorf("routine must have at least one exercise")
	}

	fit := &proto.FIT{
		Messages: []proto.Message{},
	}

	// 1. FileId message
	fileId := mesgdef.NewFileId(nil).
		SetType(typedef.FileWorkout).
		SetManufacturer(typedef.ManufacturerDevelopment).
		SetProduct(1).
		SetTimeCreated(created)
	fit.Messages = append(fit.Messages, fileId.ToMesg(nil))

	// 2. Steps
	var steps []proto.Message
	for _, ex := range r.Exercises {
		first := len(steps)
		category := MapExerciseToCategory(exerciseName(ex))

		active := mesgdef.NewWorkoutStep(nil).
			SetMessageIndex(typedef.MessageIndex(len(steps))).
			SetWktStepName(exerciseName(ex)).
			SetIntensity(typedef.IntensityActive).
			SetExerciseCategory(category).
			SetTargetType(typedef.WktStepTargetOpen)
		if ex.Reps > 0 {
			active.SetDurationType(typedef.WktStepDurationReps).
				SetDurationValue(uint32(ex.Reps))
		} else {
			active.SetDurationType(typedef.WktStepDurationOpen)
		}
		if ex.WeightKg > 0 {
			active.SetExerciseWeightScaled(ex.WeightKg)
		}
		if ex.Notes != "" {
			active.SetNotes(ex.Notes)
		}
		steps = append(steps, active.ToMesg(nil))

		if ex.RestSeconds > 0 {
			rest := mesgdef.NewWorkoutStep(nil).
				SetMessageIndex(typedef.MessageIndex(len(steps))).
				SetIntensity(typedef.IntensityRest).
				SetDurationType(typedef.WktStepDurationTime).
				SetDurationValue(uint32(ex.RestSeconds * 1000)). // milliseconds
				SetTargetType(typedef.WktStepTargetOpen)
			steps = append(steps, rest.ToMesg(nil))
		}

		if ex.Sets > 1 {
			repeat := mesgdef.NewWorkoutStep(nil).
				SetMessageIndex(typedef.MessageIndex(len(steps))).
				SetDurationType(typedef.WktStepDurationRepeatUntilStepsCmplt).
				SetDurationValue(uint32(first)).
				SetTargetValue(uint32(ex.Sets))
			steps = append(steps, repeat.ToMesg(nil))
		}
	}

	// 3. Workout message precedes its steps
	workout := mesgdef.NewWorkout(nil).
		SetWktName(r.Name).
		SetSport(typedef.SportTraining).
		SetSubSport(typedef.SubSportStrengthTraining).
		SetNumValidSteps(uint16(len(steps)))
	fit.Messages = append(fit.Messages, workout.ToMesg(nil))
	fit.Messages = append(fit.Messages, steps...)

	return encode(fit)
}

// GenerateSessionFile creates a FIT activity recording the routine performed
// as prescribed, starting at start. Set durations are estimated from reps.
func GenerateSessionFile(r *routine.Routine, start time.Time) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("routine cannot be nil")
	}
	if len(r.Exercises) == 0 {
		return nil, fmt.Errorf("routine must have at least one exercise")
	}

	fit := &proto.FIT{
		Messages: []proto.Message{},
	}

	fileId := mesgdef.NewFileId(nil).
		SetType(typedef.FileActivity).
		SetManufacturer(typedef.ManufacturerDevelopment).
		SetProduct(1).
		SetTimeCreated(start)
	fit.Messages = append(fit.Messages, fileId.ToMesg(nil))

	// Set messages, one per active set and one per rest period
	at := start
	index := 0
	for _, ex := range r.Exercises {
		category := MapExerciseToCategory(exerciseName(ex))
		sets := ex.Sets
		if sets < 1 {
			sets = 1
		}
		for s := 0; s < sets; s++ {
			duration := time.Duration(ex.Reps*secondsPerRep) * time.Second
			setMsg := mesgdef.NewSet(nil).
				SetTimestamp(at).
				SetStartTime(at).
				SetCategory([]typedef.ExerciseCategory{category}).
				SetSetType(typedef.SetTypeActive).
				SetMessageIndex(typedef.MessageIndex(index)).
				SetDuration(uint32(duration.Milliseconds()))
			if ex.Reps > 0 {
				setMsg.SetRepetitions(uint16(ex.Reps))
			}
			if ex.WeightKg > 0 {
				setMsg.SetWeightScaled(ex.WeightKg)
			}
			fit.Messages = append(fit.Messages, setMsg.ToMesg(nil))
			at = at.Add(duration)
			index++

			if ex.RestSeconds > 0 {
				rest := time.Duration(ex.RestSeconds) * time.Second
				restMsg := mesgdef.NewSet(nil).
					SetTimestamp(at).
					SetStartTime(at).
					SetSetType(typedef.SetTypeRest).
					SetMessageIndex(typedef.MessageIndex(index)).
					SetDuration(uint32(rest.Milliseconds()))
				fit.Messages = append(fit.Messages, restMsg.ToMesg(nil))
				at = at.Add(rest)
				index++
			}
		}
	}

	elapsed := uint32(at.Sub(start).Milliseconds())

	lapMsg := mesgdef.NewLap(nil).
		SetTimestamp(at).
		SetStartTime(start).
		SetSport(typedef.SportTraining).
		SetMessageIndex(0).
		SetTotalElapsedTime(elapsed).
		SetTotalTimerTime(elapsed)
	fit.Messages = append(fit.Messages, lapMsg.ToMesg(nil))

	// Summary messages go last
	sessionMsg := mesgdef.NewSession(nil).
		SetTimestamp(at).
		SetStartTime(start).
		SetSport(typedef.SportTraining).
		SetSubSport(typedef.SubSportStrengthTraining).
		SetTotalElapsedTime(elapsed).
		SetTotalTimerTime(elapsed)
	fit.Messages = append(fit.Messages, sessionMsg.ToMesg(nil))

	activityMsg := mesgdef.NewActivity(nil).
		SetTimestamp(at).
		SetType(typedef.ActivityManual).
		SetNumSessions(1)
	fit.Messages = append(fit.Messages, activityMsg.ToMesg(nil))

	return encode(fit)
}

func encode(fit *proto.FIT) ([]byte, error) {
	var buf bytes.Buffer
	enc := encoder.New(&buf)
	if err := enc.Encode(fit); err != nil {
		return nil, fmt.Errorf("failed to encode FIT file: %w", err)
	}
	return buf.Bytes(), nil
}

func exerciseName(ex routine.Exercise) string {
	if ex.Name != "" {
		return ex.Name
	}
	return ex.ExerciseID
}

// categoryKeywords is checked in order, so more specific movements come
// before the generic ones they contain.
var categoryKeywords = []struct {
	keyword  string
	category typedef.ExerciseCategory
}{
	{"deadlift", typedef.ExerciseCategoryDeadlift},
	{"bench press", typedef.ExerciseCategoryBenchPress},
	{"overhead press", typedef.ExerciseCategoryShoulderPress},
	{"shoulder press", typedef.ExerciseCategoryShoulderPress},
	{"lateral raise", typedef.ExerciseCategoryLateralRaise},
	{"calf raise", typedef.ExerciseCategoryCalfRaise},
	{"hip thrust", typedef.ExerciseCategoryHipRaise},
	{"glute bridge", typedef.ExerciseCategoryHipRaise},
	{"leg curl", typedef.ExerciseCategoryLegCurl},
	{"pull up", typedef.ExerciseCategoryPullUp},
	{"chin up", typedef.ExerciseCategoryPullUp},
	{"lat pulldown", typedef.ExerciseCategoryPullUp},
	{"push up", typedef.ExerciseCategoryPushUp},
	{"face pull", typedef.ExerciseCategoryRow},
	{"row", typedef.ExerciseCategoryRow},
	{"split squat", typedef.ExerciseCategoryLunge},
	{"squat", typedef.ExerciseCategorySquat},
	{"lunge", typedef.ExerciseCategoryLunge},
	{"curl", typedef.ExerciseCategoryCurl},
	{"tricep", typedef.ExerciseCategoryTricepsExtension},
	{"dip", typedef.ExerciseCategoryTricepsExtension},
	{"fly", typedef.ExerciseCategoryFlye},
	{"plank", typedef.ExerciseCategoryPlank},
	{"crunch", typedef.ExerciseCategoryCrunch},
	{"shrug", typedef.ExerciseCategoryShrug},
}

// MapExerciseToCategory maps an exercise name to its FIT exercise category.
// Names are canonicalized through the exercise taxonomy first, so aliases and
// abbreviations resolve too.
func MapExerciseToCategory(name string) typedef.ExerciseCategory {
	lookup := exercises.Lookup(name)
	n := strings.ToLower(strings.ReplaceAll(name, "-", " "))
	if lookup.Matched {
		n = strings.ToLower(lookup.CanonicalName)
	}

	for _, kc := range categoryKeywords {
		if strings.Contains(n, kc.keyword) {
			return kc.category
		}
	}

	switch lookup.Category {
	case exercises.CategoryCore:
		return typedef.ExerciseCategoryCore
	case exercises.CategoryCardio:
		return typedef.ExerciseCategoryCardio
	case exercises.CategoryMobility:
		return typedef.ExerciseCategoryWarmUp
	}
	return typedef.ExerciseCategoryUnknown
}
