// Package tasks loads benchmark task sets from JSON or YAML files.
package tasks

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed all:testdata
var embeddedSets embed.FS

// Load reads a task set and tags every task with kind. The name is looked up
// on disk first and then among the embedded task sets.
func Load(name string, kind Kind) ([]Task, error) {
	data, err := os.ReadFile(name)
	if errors.Is(err, fs.ErrNotExist) {
		// embed.FS always uses forward slashes.
		data, err = fs.ReadFile(embeddedSets, path.Join("testdata", filepath.ToSlash(name)))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open task file %q: %w", name, err)
	}

	tasks, err := decode(name, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse task file %q: %w", name, err)
	}

	for i := range tasks {
		tasks[i].Index = i
		tasks[i].Kind = kind
	}
	return tasks, nil
}

// List returns the names of all embedded task sets.
func List() ([]string, error) {
	entries, err := fs.ReadDir(embeddedSets, "testdata")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

func decode(name string, data []byte) ([]Task, error) {
	var tasks []Task
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &tasks); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &tasks); err != nil {
			return nil, err
		}
	}
	return tasks, nil
}
