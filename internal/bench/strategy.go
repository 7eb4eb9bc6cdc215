package bench

import (
	"context"
	"strconv"

	"github.com/giantswarm/parallel-prompt/internal/llm"
	"github.com/giantswarm/parallel-prompt/internal/tasks"
	"github.com/giantswarm/parallel-prompt/internal/template"
)

// Strategy decides which prompts the serial and parallel phases send for a
// task.
type Strategy interface {
	// Name returns the strategy identifier (e.g. "template").
	Name() string

	// SerialRequest renders the prompt of the single serial call.
	SerialRequest(task tasks.Task) (template.Prompt, error)

	// ParallelRequests plans the parallel calls. It may call the LLM itself,
	// in which case the returned plan carries the extracted schema.
	ParallelRequests(ctx context.Context, client llm.Client, task tasks.Task) (*Plan, error)
}

// Plan is the set of calls a task fans out to.
type Plan struct {
	Calls  []CallSpec
	Schema *Schema
}

// CallSpec is one planned parallel call.
type CallSpec struct {
	Index  int
	Letter string
	System string
	User   template.Prompt
}

// GetStrategy returns the Strategy for the given name.
func GetStrategy(name string) (Strategy, error) {
	switch name {
	case "template", "":
		return &TemplateStrategy{}, nil
	case "e2e":
		return &E2EStrategy{SchemaModel: DefaultSchemaModel}, nil
	default:
		return nil, &UnsupportedStrategyError{Name: name}
	}
}

// UnsupportedStrategyError is returned when an unknown strategy is requested.
type UnsupportedStrategyError struct {
	Name string
}

func (e *UnsupportedStrategyError) Error() string {
	return "unsupported benchmark strategy: " + e.Name
}

// TemplateStrategy sends the task's serial prompt serially and fills the
// task's template once per parallel call.
type TemplateStrategy struct {
	// N overrides the replica count of generate_n style tasks. The serial
	// prompt is then rendered from the template with {n} set to N.
	N *int
}

// NewSweepStrategy returns a TemplateStrategy with a fixed replica count.
func NewSweepStrategy(n int) *TemplateStrategy {
	return &TemplateStrategy{N: &n}
}

func (s *TemplateStrategy) Name() string {
	if s.N != nil {
		return "sweep"
	}
	return "template"
}

func (s *TemplateStrategy) SerialRequest(task tasks.Task) (template.Prompt, error) {
	if s.N != nil {
		if task.Template == "" {
			return "", &tasks.MissingFieldError{Task: task.Index, Field: "template"}
		}
		return template.New(task.Template).
			With("n", strconv.Itoa(*s.N)).
			WithOptional("context", task.Context), nil
	}
	if task.Serial == "" {
		return "", &tasks.MissingFieldError{Task: task.Index, Field: "serial"}
	}
	return template.New(task.Serial), nil
}

func (s *TemplateStrategy) ParallelRequests(_ context.Context, _ llm.Client, task tasks.Task) (*Plan, error) {
	if task.Template == "" {
		return nil, &tasks.MissingFieldError{Task: task.Index, Field: "template"}
	}

	n, kind := 0, task.Kind
	if s.N != nil {
		n, kind = *s.N, tasks.KindGenerateN
	} else {
		var err error
		if n, err = task.Replicas(); err != nil {
			return nil, err
		}
	}
	if n < 0 {
		return nil, &tasks.InvalidFieldError{Task: task.Index, Field: "n", Reason: "replica count must not be negative"}
	}

	base := template.New(task.Template).WithOptional("context", task.Context)
	plan := &Plan{Calls: make([]CallSpec, n)}
	for i := range n {
		spec := CallSpec{Index: i, System: ParallelSystemPrompt(kind, i), User: base}
		if s.N != nil {
			spec.System = SweepSystemPrompt(i)
		}
		switch {
		case kind == tasks.KindGenerateN:
			spec.Letter = Letter(i)
			spec.User = base.With("n", "1")
		case i < len(task.Data):
			spec.User = base.With("data", task.Data[i])
		}
		plan.Calls[i] = spec
	}
	return plan, nil
}

// E2EStrategy sends the task's original request serially and lets a model
// decompose the same request for the parallel phase. The parallel calls carry
// the generate_n letter hint so their answers differ; earlier e2e
// measurements sent the bare default system prompt to every call, so results
// are not directly comparable with those.
type E2EStrategy struct {
	SchemaModel string
}

func (s *E2EStrategy) Name() string {
	return "e2e"
}

func (s *E2EStrategy) SerialRequest(task tasks.Task) (template.Prompt, error) {
	if task.Original == "" {
		return "", &tasks.MissingFieldError{Task: task.Index, Field: "original"}
	}
	return template.New(task.Original), nil
}

func (s *E2EStrategy) ParallelRequests(ctx context.Context, client llm.Client, task tasks.Task) (*Plan, error) {
	if task.Original == "" {
		return nil, &tasks.MissingFieldError{Task: task.Index, Field: "original"}
	}

	model := s.SchemaModel
	if model == "" {
		model = DefaultSchemaModel
	}
	schema, err := ExtractSchema(ctx, client, model, task.Original)
	if err != nil {
		return nil, err
	}

	user := template.New(schema.Context)
	plan := &Plan{Calls: make([]CallSpec, schema.N), Schema: schema}
	for i := range schema.N {
		plan.Calls[i] = CallSpec{
			Index:  i,
			Letter: Letter(i),
			System: ParallelSystemPrompt(tasks.KindGenerateN, i),
			User:   user,
		}
	}
	return plan, nil
}
