package routine

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

// Template is a starting point for a new routine.
type Template struct {
	ID          string     `yaml:"id"`
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Type        Type       `yaml:"type"`
	Days        []string   `yaml:"days"`
	Exercises   []Exercise `yaml:"exercises"`
}

// ExerciseIDs returns the IDs of the template's exercises in order.
func (t Template) ExerciseIDs() []string {
	ids := make([]string, 0, len(t.Exercises))
	for _, ex := range t.Exercises {
		ids = append(ids, ex.ExerciseID)
	}
	return ids
}

//go:embed templates.yaml
var templatesYAML []byte

var (
	catalogOnce sync.Once
	catalog     []Template
)

func loadCatalog() []Template {
	catalogOnce.Do(func() {
		var doc struct {
			Templates []Template `yaml:"templates"`
		}
		if err := yaml.Unmarshal(templatesYAML, &doc); err != nil {
			panic(fmt.Sprintf("routine: embedded templates are invalid: %v", err))
		}
		catalog = doc.Templates
	})
	return catalog
}

func (t Template) clone() Template {
	t.Days = append([]string(nil), t.Days...)
	t.Exercises = append([]Exercise(nil), t.Exercises...)
	return t
}

// Templates returns every built-in template.
func Templates() []Template {
	all := loadCatalog()
	out := make([]Template, 0, len(all))
	for _, tpl := range all {
		out = append(out, tpl.clone())
	}
	return out
}

// TemplatesFor returns the templates of one routine type.
func TemplatesFor(t Type) []Template {
	var out []Template
	for _, tpl := range loadCatalog() {
		if tpl.Type == t {
			out = append(out, tpl.clone())
		}
	}
	return out
}

// TemplateByID finds a template by ID.
func TemplateByID(id string) (Template, bool) {
	for _, tpl := range loadCatalog() {
		if tpl.ID == id {
			return tpl.clone(), true
		}
	}
	return Template{}, false
}
