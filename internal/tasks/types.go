package tasks

import (
	"fmt"
	"strings"
)

// Kind is the type of benchmark task. It decides how many parallel calls a
// task fans out to and which system prompts are used.
type Kind int

const (
	KindDefault Kind = iota
	KindKeywordExtraction
	KindReadingComprehension
	KindGenerateN
)

var kindNames = map[Kind]string{
	KindDefault:              "default",
	KindKeywordExtraction:    "keyword_extraction",
	KindReadingComprehension: "reading_comprehension",
	KindGenerateN:            "generate_n",
}

// BenchmarkKinds are the kinds accepted on the command line.
var BenchmarkKinds = []Kind{KindReadingComprehension, KindKeywordExtraction, KindGenerateN}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// DataDriven reports whether the kind fans out over the task's data items.
func (k Kind) DataDriven() bool {
	return k == KindKeywordExtraction || k == KindReadingComprehension
}

// ParseKind parses a kind name.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return KindDefault, &InvalidKindError{Name: name}
}

// InvalidKindError is returned when an unknown task kind is requested.
type InvalidKindError struct {
	Name string
}

func (e *InvalidKindError) Error() string {
	names := make([]string, 0, len(BenchmarkKinds))
	for _, k := range BenchmarkKinds {
		names = append(names, k.String())
	}
	return fmt.Sprintf("invalid task %q, valid options are: %s", e.Name, strings.Join(names, ", "))
}

// MissingFieldError is returned when a task lacks a field its kind needs.
type MissingFieldError struct {
	Task  int
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("task %d is missing required field %q", e.Task, e.Field)
}

// InvalidFieldError is returned when a task field holds an unusable value.
type InvalidFieldError struct {
	Task   int
	Field  string
	Reason string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("task %d has invalid field %q: %s", e.Task, e.Field, e.Reason)
}

// Task is one benchmark input record.
type Task struct {
	Original string   `json:"original,omitempty" yaml:"original,omitempty"`
	Serial   string   `json:"serial,omitempty" yaml:"serial,omitempty"`
	Template string   `json:"template,omitempty" yaml:"template,omitempty"`
	Context  *string  `json:"context,omitempty" yaml:"context,omitempty"`
	Data     []string `json:"data,omitempty" yaml:"data,omitempty"`
	N        *int     `json:"n,omitempty" yaml:"n,omitempty"`

	// Index is the position of the task in its file. Set by Load.
	Index int `json:"-" yaml:"-"`
	// Kind is set once by Load.
	Kind Kind `json:"-" yaml:"-"`
}

// Replicas returns the number of parallel calls the task fans out to.
func (t Task) Replicas() (int, error) {
	switch {
	case t.Kind.DataDriven():
		if t.Data == nil {
			return 0, &MissingFieldError{Task: t.Index, Field: "data"}
		}
		return len(t.Data), nil
	case t.Kind == KindGenerateN:
		if t.N == nil {
			return 0, &MissingFieldError{Task: t.Index, Field: "n"}
		}
		return t.count()
	default:
		if t.Data != nil {
			return len(t.Data), nil
		}
		if t.N != nil {
			return t.count()
		}
		return 0, nil
	}
}

func (t Task) count() (int, error) {
	if *t.N < 0 {
		return 0, &InvalidFieldError{Task: t.Index, Field: "n", Reason: fmt.Sprintf("must not be negative, got %d", *t.N)}
	}
	return *t.N, nil
}

// Label returns the text that best identifies the task in reports.
func (t Task) Label() string {
	switch {
	case t.Original != "":
		return t.Original
	case t.Serial != "":
		return t.Serial
	default:
		return t.Template
	}
}
