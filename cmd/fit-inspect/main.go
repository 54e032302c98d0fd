package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"text/tabwriter"

	"github.com/muktihari/fit/decoder"
	"github.com/muktihari/fit/profile/mesgdef"
	"github.com/muktihari/fit/profile/typedef"
	"github.com/muktihari/fit/proto"
)

// FieldStats aggregates one numeric field across set messages.
type FieldStats struct {
	Name  string
	Count int
	Min   float64
	Max   float64
	Sum   float64
}

func NewFieldStats(name string) *FieldStats {
	return &FieldStats{
		Name: name,
		Min:  math.MaxFloat64,
		Max:  -math.MaxFloat64,
	}
}

func (fs *FieldStats) Update(v float64) {
	fs.Count++
	fs.Sum += v
	if v < fs.Min {
		fs.Min = v
	}
	if v > fs.Max {
		fs.Max = v
	}
}

func (fs *FieldStats) Avg() float64 {
	if fs.Count == 0 {
		return 0
	}
	return fs.Sum / float64(fs.Count)
}

func main() {
	inputPath := flag.String("input", "", "Path to FIT file")
	flag.Parse()

	if *inputPath == "" {
		fmt.Println("Please provide input file with -input")
		os.Exit(1)
	}

	data, err := os.ReadFile(*inputPath)
	if err != nil {
		fmt.Printf("Failed to read file: %v\n", err)
		os.Exit(1)
	}

	fitData, err := decoder.New(bytes.NewReader(data)).Decode()
	if err != nil {
		fmt.Printf("Failed to decode FIT file: %v\n", err)
		os.Exit(1)
	}

	inspect(os.Stdout, fitData)
}

// inspect prints the workout steps and set statistics found in fitData.
func inspect(out io.Writer, fitData *proto.FIT) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	defer w.Flush()

	reps := NewFieldStats("Repetitions")
	weight := NewFieldStats("WeightKg")
	duration := NewFieldStats("DurationSec")
	activeSets, restSets := 0, 0

	var steps []*mesgdef.WorkoutStep
	for i := range fitData.Messages {
		msg := &fitData.Messages[i]
		switch msg.Num {
		case typedef.MesgNumWorkout:
			wkt := mesgdef.NewWorkout(msg)
			fmt.Fprintf(w, "Workout: %s (%d steps)\n", wkt.WktName, wkt.NumValidSteps)
		case typedef.MesgNumWorkoutStep:
			steps = append(steps, mesgdef.NewWorkoutStep(msg))
		case typedef.MesgNumSet:
			set := mesgdef.NewSet(msg)
			if set.SetType == typedef.SetTypeRest {
				restSets++
				continue
			}
			activeSets++
			if set.Repetitions != math.MaxUint16 {
				reps.Update(float64(set.Repetitions))
			}
			if kg := set.WeightScaled(); !math.IsNaN(kg) {
				weight.Update(kg)
			}
			if set.Duration != math.MaxUint32 {
				duration.Update(float64(set.Duration) / 1000)
			}
		}
	}

	if len(steps) > 0 {
		fmt.Fprintln(w, "\nStep\tName\tIntensity\tDuration\tValue\tTarget")
		fmt.Fprintln(w, "----\t----\t---------\t--------\t-----\t------")
		for _, s := range steps {
			fmt.Fprintf(w, "%d\t%s\t%v\t%v\t%d\t%d\n",
				s.MessageIndex, s.WktStepName, s.Intensity, s.DurationType, s.DurationValue, s.TargetValue)
		}
	}

	if activeSets+restSets > 0 {
		fmt.Fprintf(w, "\nActive sets: %d, rest periods: %d\n", activeSets, restSets)
		fmt.Fprintln(w, "Field\tCount\tMin\tMax\tAvg")
		fmt.Fprintln(w, "-----\t-----\t---\t---\t---")
		for _, s := range []*FieldStats{reps, weight, duration} {
			if s.Count > 0 {
				fmt.Fprintf(w, "%s\t%d\t%.2f\t%.2f\t%.2f\n", s.Name, s.Count, s.Min, s.Max, s.Avg())
			}
		}
	}
}
