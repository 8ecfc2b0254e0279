package progress

import (
	"path/filepath"

	"github.com/spf13/afero"
)

// Scan lists dir and returns a Candidate for every entry whose filename
// matches the Progress stem grammar.
func Scan(fs afero.Fs, dir string) ([]Candidate, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, err
	}

	var out []Candidate
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		p, ok := Parse(e.Name())
		if !ok {
			continue
		}
		out = append(out, Candidate{Progress: p, Path: filepath.Join(dir, e.Name())})
	}
	return out, nil
}
