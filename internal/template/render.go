package template

import (
	"regexp"
	"slices"
	"strings"
)

// Prompt is a prompt in escaped form.
type Prompt string

// New escapes tmpl and returns it as a Prompt ready for substitution.
func New(tmpl string) Prompt {
	return Prompt(Escape(tmpl))
}

// With replaces every {name} placeholder with the escaped value.
func (p Prompt) With(name, value string) Prompt {
	return Prompt(strings.ReplaceAll(string(p), "{"+name+"}", Escape(value)))
}

// WithOptional behaves like With when value is non-nil. A nil value leaves
// the placeholder in place.
func (p Prompt) WithOptional(name string, value *string) Prompt {
	if value == nil {
		return p
	}
	return p.With(name, *value)
}

// String returns the escaped prompt.
func (p Prompt) String() string {
	return string(p)
}

// Text returns the prompt as the model should read it.
func (p Prompt) Text() (string, error) {
	return Unescape(string(p))
}

var placeholderPattern = regexp.MustCompile(`\{[a-z_]+\}`)

// Placeholders lists the {name} placeholders still present in the prompt.
func (p Prompt) Placeholders() []string {
	found := placeholderPattern.FindAllString(string(p), -1)
	slices.Sort(found)
	return slices.Compact(found)
}

// Render escapes tmpl and substitutes values in sorted key order.
func Render(tmpl string, values map[string]string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	p := New(tmpl)
	for _, k := range keys {
		p = p.With(k, values[k])
	}
	return p.String()
}
