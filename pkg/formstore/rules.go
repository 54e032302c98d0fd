package formstore

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/Megloux/mosaic/pkg/errors"
)

// FieldKind labels the shape of value a bound control edits.
type FieldKind string

const (
	KindInput         FieldKind = "Input"
	KindTextarea      FieldKind = "Textarea"
	KindSelect        FieldKind = "Select"
	KindCheckboxGroup FieldKind = "CheckboxGroup"
	KindTimeInput     FieldKind = "TimeInput"
	KindNumberInput   FieldKind = "NumberInput"
	KindSwitch        FieldKind = "Switch"
)

// CoercionRule converts a raw value into the canonical shape stored for a kind.
type CoercionRule func(raw any) (any, error)

// Rules maps field kinds to their coercion rule.
type Rules map[FieldKind]CoercionRule

// RuleType names one of the built-in coercion behaviours.
type RuleType string

const (
	RuleString      RuleType = "string"
	RuleNumber      RuleType = "number"
	RuleBoolean     RuleType = "boolean"
	RuleSelect      RuleType = "select"
	RuleMultiSelect RuleType = "multi_select"
	RuleTime        RuleType = "time"
)

// RuleSpec is the declarative form of a coercion rule, as found in rule files.
type RuleSpec struct {
	Type      RuleType `yaml:"type"`
	Options   []string `yaml:"options,omitempty"`
	Min       *float64 `yaml:"min,omitempty"`
	Max       *float64 `yaml:"max,omitempty"`
	MinLength *int     `yaml:"min_length,omitempty"`
	MaxLength *int     `yaml:"max_length,omitempty"`
	Pattern   string   `yaml:"pattern,omitempty"`
}

// DefaultSpecs returns the rule specs used when no rule file is configured.
func DefaultSpecs() map[FieldKind]RuleSpec {
	return map[FieldKind]RuleSpec{
		KindInput:         {Type: RuleString},
		KindTextarea:      {Type: RuleString},
		KindSelect:        {Type: RuleSelect},
		KindCheckboxGroup: {Type: RuleMultiSelect},
		KindTimeInput:     {Type: RuleTime},
		KindNumberInput:   {Type: RuleNumber},
		KindSwitch:        {Type: RuleBoolean},
	}
}

// DefaultRules compiles DefaultSpecs.
func DefaultRules() Rules {
	rules, err := CompileRules(DefaultSpecs())
	if err != nil {
		// Default specs are static; failing here is a programming error.
		panic(err)
	}
	return rules
}

// CompileRules turns a set of specs into executable rules.
func CompileRules(specs map[FieldKind]RuleSpec) (Rules, error) {
	rules := make(Rules, len(specs))
	for kind, spec := range specs {
		rule, err := spec.Rule()
		if err != nil {
			return nil, fmt.Errorf("kind %q: %w", kind, err)
		}
		rules[kind] = rule
	}
	return rules, nil
}

type rulesFile struct {
	Kinds map[FieldKind]RuleSpec `yaml:"kinds"`
}

// LoadRules reads a YAML rule file and layers it over the default specs.
//
//	kinds:
//	  Select:
//	    type: select
//	    options: [strength, hypertrophy]
func LoadRules(r io.Reader) (Rules, error) {
	var f rulesFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && err != io.EOF {
		return nil, apperrors.ErrValidation.WithMessage("failed to parse form rules").WithCause(err)
	}
	specs := DefaultSpecs()
	for kind, spec := range f.Kinds {
		specs[kind] = spec
	}
	return CompileRules(specs)
}

// Rule builds the coercion rule described by the spec.
func (s RuleSpec) Rule() (CoercionRule, error) {
	var pattern *regexp.Regexp
	if s.Pattern != "" {
		p, err := regexp.Compile(s.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", s.Pattern, err)
		}
		pattern = p
	}

	switch s.Type {
	case RuleString:
		return func(raw any) (any, error) { return s.coerceString(raw, pattern) }, nil
	case RuleNumber:
		return s.coerceNumber, nil
	case RuleBoolean:
		return coerceBool, nil
	case RuleSelect:
		return s.coerceSelect, nil
	case RuleMultiSelect:
		return s.coerceMultiSelect, nil
	case RuleTime:
		return coerceTime, nil
	default:
		return nil, fmt.Errorf("unknown rule type %q", s.Type)
	}
}

func invalid(format string, args ...any) error {
	return apperrors.ErrFieldValueInvalid.WithMessage(fmt.Sprintf(format, args...))
}

func (s RuleSpec) coerceString(raw any, pattern *regexp.Regexp) (any, error) {
	var value string
	switch v := raw.(type) {
	case nil:
		value = ""
	case string:
		value = v
	case []byte:
		value = string(v)
	case int:
		value = strconv.Itoa(v)
	case int64:
		value = strconv.FormatInt(v, 10)
	case float64:
		value = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return nil, invalid("expected text, got %T", raw)
	}

	if value == "" {
		return value, nil
	}
	if s.MinLength != nil && len(value) < *s.MinLength {
		return nil, invalid("must be at least %d characters", *s.MinLength)
	}
	if s.MaxLength != nil && len(value) > *s.MaxLength {
		return nil, invalid("must be at most %d characters", *s.MaxLength)
	}
	if pattern != nil && !pattern.MatchString(value) {
		return nil, invalid("does not match required pattern")
	}
	return value, nil
}

func (s RuleSpec) coerceNumber(raw any) (any, error) {
	var num float64
	switch v := raw.(type) {
	case float64:
		num = v
	case float32:
		num = float64(v)
	case int:
		num = float64(v)
	case int32:
		num = float64(v)
	case int64:
		num = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, invalid("must be a number")
		}
		num = parsed
	default:
		return nil, invalid("expected a number, got %T", raw)
	}

	if s.Min != nil && num < *s.Min {
		return nil, invalid("must be >= %v", *s.Min)
	}
	if s.Max != nil && num > *s.Max {
		return nil, invalid("must be <= %v", *s.Max)
	}
	return num, nil
}

func coerceBool(raw any) (any, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		switch v {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	}
	return nil, invalid("must be 'true' or 'false'")
}

func (s RuleSpec) coerceSelect(raw any) (any, error) {
	var value string
	switch v := raw.(type) {
	case nil:
		return "", nil
	case string:
		value = v
	default:
		return nil, invalid("expected a single option, got %T", raw)
	}
	if value == "" || len(s.Options) == 0 {
		return value, nil
	}
	if !contains(s.Options, value) {
		return nil, invalid("invalid option %q", value)
	}
	return value, nil
}

func (s RuleSpec) coerceMultiSelect(raw any) (any, error) {
	var values []string
	switch v := raw.(type) {
	case nil:
	case []string:
		values = v
	case []any:
		for _, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, invalid("expected a list of strings, found %T", item)
			}
			values = append(values, str)
		}
	case string:
		values = splitMultiSelect(v)
	default:
		return nil, invalid("expected a list of strings, got %T", raw)
	}

	// Always a fresh slice so callers never share backing arrays with the store.
	result := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || contains(result, v) {
			continue
		}
		if len(s.Options) > 0 && !contains(s.Options, v) {
			return nil, invalid("invalid option %q", v)
		}
		result = append(result, v)
	}
	return result, nil
}

var timeLayouts = []string{"15:04", "15:04:05"}

func coerceTime(raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return "", nil
	case time.Time:
		return v.Format("15:04"), nil
	case string:
		value := strings.TrimSpace(v)
		if value == "" {
			return "", nil
		}
		// "7:30" is accepted as a convenience for "07:30".
		if len(value) == 4 && value[1] == ':' {
			value = "0" + value
		}
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, value); err == nil {
				return t.Format("15:04"), nil
			}
		}
		return nil, invalid("invalid time %q", v)
	}
	return nil, invalid("expected a time, got %T", raw)
}

var multiSelectSep = regexp.MustCompile(`,\s*`)

// splitMultiSelect splits a comma-separated multi-select value
func splitMultiSelect(value string) []string {
	if value == "" {
		return nil
	}
	var result []string
	for _, v := range multiSelectSep.Split(value, -1) {
		if v != "" {
			result = append(result, v)
		}
	}
	return result
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
