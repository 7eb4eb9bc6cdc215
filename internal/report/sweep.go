package report

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/giantswarm/parallel-prompt/internal/bench"
)

// WriteSweep writes the sweep points to path as JSON, or YAML for a .yaml
// or .yml path.
func WriteSweep(path string, points []bench.SweepPoint) error {
	format, err := ParseFormat("", path)
	if err != nil {
		return err
	}

	doc := struct {
		Points []bench.SweepPoint `json:"points" yaml:"points"`
	}{Points: points}

	var data []byte
	switch format {
	case FormatYAML:
		data, err = yaml.Marshal(doc)
	default:
		data, err = marshalJSON(doc)
	}
	if err != nil {
		return fmt.Errorf("failed to encode sweep: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}
