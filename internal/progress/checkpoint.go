package progress

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

// WriteCheckpoint atomically writes the per-depth index path to path: a
// single line of comma-separated decimal integers.
func WriteCheckpoint(fs afero.Fs, path string, indices []int) error {
	parts := make([]string, len(indices))
	for i, v := range indices {
		parts[i] = strconv.Itoa(v)
	}
	line := strings.Join(parts, ",") + "\n"

	tmp := path + ".tmp"
	if err := afero.WriteFile(fs, tmp, []byte(line), 0o644); err != nil {
		return fmt.Errorf("tectonic: write checkpoint: %w", err)
	}
	return fs.Rename(tmp, path)
}

// ReadCheckpoint parses a checkpoint file written by WriteCheckpoint.
func ReadCheckpoint(fs afero.Fs, path string) ([]int, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("tectonic: read checkpoint: %w", err)
	}
	line := strings.TrimSpace(string(data))
	if line == "" {
		return nil, nil
	}
	parts := strings.Split(line, ",")
	indices := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("tectonic: malformed checkpoint entry %q: %w", p, err)
		}
		indices[i] = v
	}
	return indices, nil
}
