package exercises

import (
	"strings"
	"unicode"
)

// Muscle groups used for primary and secondary targeting.
const (
	MuscleChest      = "chest"
	MuscleBack       = "back"
	MuscleLats       = "lats"
	MuscleShoulders  = "shoulders"
	MuscleBiceps     = "biceps"
	MuscleTriceps    = "triceps"
	MuscleForearms   = "forearms"
	MuscleTraps      = "traps"
	MuscleQuads      = "quads"
	MuscleHamstrings = "hamstrings"
	MuscleGlutes     = "glutes"
	MuscleCalves     = "calves"
	MuscleCore       = "core"
	MuscleLowerBack  = "lower_back"
	MuscleHips       = "hips"
	MuscleFullBody   = "full_body"
	MuscleOther      = "other"
)

// Movement categories.
const (
	CategoryPush     = "push"
	CategoryPull     = "pull"
	CategoryLegs     = "legs"
	CategoryCore     = "core"
	CategoryCardio   = "cardio"
	CategoryMobility = "mobility"
)

type canonicalExercise struct {
	name      string
	category  string
	equipment string
	primary   string
	secondary []string
	aliases   []string
}

// LookupResult is returned by Lookup.
type LookupResult struct {
	Matched       bool
	CanonicalName string
	Category      string
	Equipment     string
	Primary       string
	Secondary     []string
	Confidence    float64 // 0.0-1.0
}

var abbreviations = map[string]string{
	"db":   "dumbbell",
	"bb":   "barbell",
	"kb":   "kettlebell",
	"ohp":  "overhead press",
	"rdl":  "romanian deadlift",
	"sldl": "stiff leg deadlift",
	"lat":  "lateral",
	"incl": "incline",
	"ext":  "extension",
	"bw":   "bodyweight",
}

var taxonomy = []canonicalExercise{
	{"Bench Press", CategoryPush, "barbell", MuscleChest, []string{MuscleTriceps, MuscleShoulders}, []string{"Flat Bench", "Barbell Bench Press", "Flat Bench Press"}},
	{"Incline Bench Press", CategoryPush, "barbell", MuscleChest, []string{MuscleShoulders, MuscleTriceps}, []string{"Incline Press", "Incline Barbell Press"}},
	{"Dumbbell Bench Press", CategoryPush, "dumbbell", MuscleChest, []string{MuscleTriceps, MuscleShoulders}, []string{"Dumbbell Press", "Flat Dumbbell Press"}},
	{"Chest Fly", CategoryPush, "dumbbell", MuscleChest, []string{MuscleShoulders}, []string{"Dumbbell Fly", "Pec Fly", "Cable Fly"}},
	{"Push Up", CategoryPush, "bodyweight", MuscleChest, []string{MuscleTriceps, MuscleShoulders}, []string{"Pushup", "Push-Up", "Press Up"}},
	{"Dip", CategoryPush, "bodyweight", MuscleChest, []string{MuscleTriceps, MuscleShoulders}, []string{"Dips", "Chest Dip", "Parallel Bar Dip"}},
	{"Overhead Press", CategoryPush, "barbell", MuscleShoulders, []string{MuscleTriceps}, []string{"Military Press", "Shoulder Press", "Standing Press"}},
	{"Lateral Raise", CategoryPush, "dumbbell", MuscleShoulders, nil, []string{"Side Raise", "Dumbbell Lateral Raise", "Side Lateral Raise"}},
	{"Tricep Pushdown", CategoryPush, "cable", MuscleTriceps, nil, []string{"Triceps Pushdown", "Cable Pushdown", "Rope Pushdown"}},
	{"Skull Crusher", CategoryPush, "barbell", MuscleTriceps, nil, []string{"Lying Triceps Extension", "EZ Bar Skull Crusher"}},

	{"Deadlift", CategoryPull, "barbell", MuscleBack, []string{MuscleHamstrings, MuscleGlutes, MuscleLowerBack}, []string{"Conventional Deadlift", "Barbell Deadlift"}},
	{"Barbell Row", CategoryPull, "barbell", MuscleBack, []string{MuscleBiceps, MuscleLats}, []string{"Bent Over Row", "Pendlay Row"}},
	{"Dumbbell Row", CategoryPull, "dumbbell", MuscleBack, []string{MuscleBiceps, MuscleLats}, []string{"One Arm Dumbbell Row", "Single Arm Row"}},
	{"Pull Up", CategoryPull, "bodyweight", MuscleLats, []string{MuscleBiceps, MuscleBack}, []string{"Pullup", "Pull-Up", "Chin Up", "Chinup"}},
	{"Lat Pulldown", CategoryPull, "cable", MuscleLats, []string{MuscleBiceps}, []string{"Pulldown", "Wide Grip Pulldown"}},
	{"Seated Cable Row", CategoryPull, "cable", MuscleBack, []string{MuscleBiceps, MuscleLats}, []string{"Cable Row", "Seated Row"}},
	{"Face Pull", CategoryPull, "cable", MuscleShoulders, []string{MuscleTraps, MuscleBack}, []string{"Rope Face Pull"}},
	{"Shrug", CategoryPull, "barbell", MuscleTraps, nil, []string{"Barbell Shrug", "Dumbbell Shrug"}},
	{"Barbell Curl", CategoryPull, "barbell", MuscleBiceps, []string{MuscleForearms}, []string{"Bicep Curl", "Biceps Curl", "Standing Curl"}},
	{"Hammer Curl", CategoryPull, "dumbbell", MuscleBiceps, []string{MuscleForearms}, []string{"Dumbbell Hammer Curl"}},

	{"Squat", CategoryLegs, "barbell", MuscleQuads, []string{MuscleGlutes, MuscleHamstrings}, []string{"Back Squat", "Barbell Squat", "High Bar Squat"}},
	{"Front Squat", CategoryLegs, "barbell", MuscleQuads, []string{MuscleGlutes, MuscleCore}, []string{"Barbell Front Squat"}},
	{"Leg Press", CategoryLegs, "machine", MuscleQuads, []string{MuscleGlutes}, []string{"Machine Leg Press", "45 Degree Leg Press"}},
	{"Romanian Deadlift", CategoryLegs, "barbell", MuscleHamstrings, []string{MuscleGlutes, MuscleLowerBack}, []string{"Stiff Leg Deadlift", "RDL"}},
	{"Lunge", CategoryLegs, "dumbbell", MuscleQuads, []string{MuscleGlutes}, []string{"Walking Lunge", "Reverse Lunge", "Dumbbell Lunge"}},
	{"Leg Curl", CategoryLegs, "machine", MuscleHamstrings, nil, []string{"Hamstring Curl", "Lying Leg Curl", "Seated Leg Curl"}},
	{"Leg Extension", CategoryLegs, "machine", MuscleQuads, nil, []string{"Quad Extension"}},
	{"Calf Raise", CategoryLegs, "machine", MuscleCalves, nil, []string{"Standing Calf Raise", "Seated Calf Raise"}},
	{"Hip Thrust", CategoryLegs, "barbell", MuscleGlutes, []string{MuscleHamstrings}, []string{"Barbell Hip Thrust", "Glute Bridge"}},

	{"Plank", CategoryCore, "bodyweight", MuscleCore, []string{MuscleShoulders}, []string{"Front Plank", "Forearm Plank"}},
	{"Crunch", CategoryCore, "bodyweight", MuscleCore, nil, []string{"Crunches", "Ab Crunch"}},
	{"Hanging Leg Raise", CategoryCore, "bodyweight", MuscleCore, []string{MuscleHips}, []string{"Leg Raise", "Hanging Knee Raise"}},
	{"Russian Twist", CategoryCore, "bodyweight", MuscleCore, nil, []string{"Seated Twist"}},

	{"Burpee", CategoryCardio, "bodyweight", MuscleFullBody, nil, []string{"Burpees"}},
	{"Kettlebell Swing", CategoryCardio, "kettlebell", MuscleGlutes, []string{MuscleHamstrings, MuscleCore}, []string{"Russian Swing", "KB Swing"}},
	{"Jump Rope", CategoryCardio, "rope", MuscleCalves, []string{MuscleShoulders}, []string{"Skipping", "Skipping Rope"}},
	{"Running", CategoryCardio, "none", MuscleQuads, []string{MuscleCalves, MuscleHamstrings}, []string{"Run", "Treadmill Run", "Jog"}},
	{"Rowing", CategoryCardio, "machine", MuscleBack, []string{MuscleQuads, MuscleBiceps}, []string{"Row Erg", "Rowing Machine", "Erg"}},
	{"Cycling", CategoryCardio, "machine", MuscleQuads, []string{MuscleCalves}, []string{"Bike", "Stationary Bike", "Spin"}},

	{"Cat Cow", CategoryMobility, "none", MuscleLowerBack, []string{MuscleCore}, []string{"Cat Camel", "Cat-Cow Stretch"}},
	{"World's Greatest Stretch", CategoryMobility, "none", MuscleHips, []string{MuscleHamstrings, MuscleBack}, []string{"Worlds Greatest Stretch", "WGS"}},
	{"Hip Flexor Stretch", CategoryMobility, "none", MuscleHips, []string{MuscleQuads}, []string{"Kneeling Hip Flexor Stretch", "Couch Stretch"}},
	{"Pigeon Stretch", CategoryMobility, "none", MuscleGlutes, []string{MuscleHips}, []string{"Pigeon Pose"}},
}

var (
	byName  = map[string]*canonicalExercise{}
	byAlias = map[string]*canonicalExercise{}
)

func init() {
	for i := range taxonomy {
		ex := &taxonomy[i]
		byName[normalize(ex.name)] = ex
		for _, alias := range ex.aliases {
			byAlias[normalize(alias)] = ex
		}
	}
}

const fuzzyThreshold = 0.9

// Lookup maps a free-form exercise name onto the canonical taxonomy. It tries
// exact name, exact alias, abbreviation expansion and finally a Levenshtein
// match of at least 90% similarity.
func Lookup(name string) LookupResult {
	n := normalize(name)
	if n == "" {
		return LookupResult{Primary: MuscleOther}
	}

	if ex, ok := exact(n); ok {
		return ex.result(1.0)
	}
	if expanded := expandAbbreviations(n); expanded != n {
		if ex, ok := exact(expanded); ok {
			return ex.result(0.95)
		}
	}
	if ex, score := closest(n); ex != nil && score >= fuzzyThreshold {
		return ex.result(score)
	}
	return LookupResult{Primary: MuscleOther}
}

func exact(n string) (*canonicalExercise, bool) {
	if ex, ok := byName[n]; ok {
		return ex, true
	}
	ex, ok := byAlias[n]
	return ex, ok
}

func (ex *canonicalExercise) result(confidence float64) LookupResult {
	return LookupResult{
		Matched:       true,
		CanonicalName: ex.name,
		Category:      ex.category,
		Equipment:     ex.equipment,
		Primary:       ex.primary,
		Secondary:     append([]string(nil), ex.secondary...),
		Confidence:    confidence,
	}
}

// closest scans the taxonomy in declaration order, name before aliases. Ties
// go to the earliest candidate.
func closest(n string) (*canonicalExercise, float64) {
	var best *canonicalExercise
	var bestScore float64
	consider := func(ex *canonicalExercise, candidate string) {
		if score := similarity(n, normalize(candidate)); score > bestScore {
			best, bestScore = ex, score
		}
	}
	for i := range taxonomy {
		ex := &taxonomy[i]
		consider(ex, ex.name)
		for _, alias := range ex.aliases {
			consider(ex, alias)
		}
	}
	return best, bestScore
}

// normalize lower-cases s, drops punctuation and collapses whitespace.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func expandAbbreviations(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if full, ok := abbreviations[w]; ok {
			words[i] = full
		}
	}
	return strings.Join(words, " ")
}

func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	longest := max(len(a), len(b))
	if longest == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshtein(a, b))/float64(longest)
}

// levenshtein computes edit distance with two rolling rows.
func levenshtein(a, b string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
