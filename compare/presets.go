package compare

import (
	"errors"
	"fmt"
	"slices"

	"github.com/utkarsh5026/seqpar/task"
)

// ErrUnknownPreset is returned by Preset for unrecognised names.
var ErrUnknownPreset = errors.New("unknown preset")

const (
	PresetBasic    = "basic"
	PresetExtended = "extended"
)

var presets = map[string][]task.Descriptor{
	PresetBasic: {
		{ID: "task-1", DurationMs: 1000},
		{ID: "task-2", DurationMs: 500},
		{ID: "task-3", DurationMs: 1500},
	},
	PresetExtended: {
		{ID: "task-1", DurationMs: 1000},
		{ID: "task-2", DurationMs: 2000},
		{ID: "task-3", DurationMs: 1500},
		{ID: "task-4", DurationMs: 800},
		{ID: "task-5", DurationMs: 1200},
	},
}

// Preset returns a copy of the named task list.
func Preset(name string) ([]task.Descriptor, error) {
	ds, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownPreset, name, PresetNames())
	}
	return slices.Clone(ds), nil
}

// PresetNames lists the available presets in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
