package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Megloux/mosaic/pkg/domain/file_generators"
	"github.com/Megloux/mosaic/pkg/routine"
)

func main() {
	inputFile := flag.String("input", "", "Path to input JSON file (Routine)")
	templateID := flag.String("template", "", "Built-in template ID to export instead of -input")
	outputFile := flag.String("output", "output.fit", "Path to output FIT file")
	session := flag.Bool("session", false, "Write an activity of the routine performed now instead of a workout")
	flag.Parse()

	r, err := loadRoutine(*inputFile, *templateID)
	if err != nil {
		if *inputFile == "" && *templateID == "" {
			flag.Usage()
			os.Exit(1)
		}
		log.Fatalf("Failed to load routine: %v", err)
	}

	var fitData []byte
	if *session {
		fitData, err = file_generators.GenerateSessionFile(r, time.Now())
	} else {
		fitData, err = file_generators.GenerateWorkoutFile(r, time.Now())
	}
	if err != nil {
		log.Fatalf("Failed to generate FIT file: %v", err)
	}

	if err := os.WriteFile(*outputFile, fitData, 0644); err != nil {
		log.Fatalf("Failed to write output file: %v", err)
	}

	fmt.Printf("Successfully wrote FIT file to %s (%d bytes)\n", *outputFile, len(fitData))
}

func loadRoutine(inputFile, templateID string) (*routine.Routine, error) {
	switch {
	case templateID != "":
		tpl, ok := routine.TemplateByID(templateID)
		if !ok {
			return nil, fmt.Errorf("unknown template %q", templateID)
		}
		return &routine.Routine{
			Name:       tpl.Name,
			Type:       tpl.Type,
			TemplateID: tpl.ID,
			Days:       tpl.Days,
			Exercises:  tpl.Exercises,
		}, nil
	case inputFile != "":
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return nil, err
		}
		var r routine.Routine
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		return &r, nil
	default:
		return nil, fmt.Errorf("one of -input or -template is required")
	}
}
