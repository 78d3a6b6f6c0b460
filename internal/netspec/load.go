package netspec

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

var (
	// ErrNoFiles is returned when a directory holds no .cue files.
	ErrNoFiles = errors.New("netspec: no CUE files found")
	// ErrNoNetworks is returned when the loaded files declare no network.
	ErrNoNetworks = errors.New("netspec: no networks declared")
	// ErrDuplicateNetwork is returned when two files declare the same name.
	ErrDuplicateNetwork = errors.New("netspec: duplicate network")
)

// Load compiles every network declared in the .cue files under dir, in file
// name order.
func Load(dir string) ([]*Spec, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("networks directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	files, err := FindCUEFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoFiles)
	}

	var specs []*Spec
	seen := make(map[string]string)
	for _, path := range files {
		got, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		for _, s := range got {
			if prev, ok := seen[s.Name]; ok {
				return nil, fmt.Errorf("%s in %s and %s: %w", s.Name, prev, path, ErrDuplicateNetwork)
			}
			seen[s.Name] = path
		}
		specs = append(specs, got...)
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoNetworks)
	}
	return specs, nil
}

// LoadFile compiles every network declared in one .cue file.
func LoadFile(path string) ([]*Spec, error) {
	specs, err := loadFile(path)
	if err != nil {
		return nil, err
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoNetworks)
	}
	return specs, nil
}

// LoadPath loads a single file or a directory.
func LoadPath(path string) ([]*Spec, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("networks: %w", err)
	}
	if info.IsDir() {
		return Load(path)
	}
	return LoadFile(path)
}

func loadFile(path string) ([]*Spec, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	v := cuecontext.New().CompileBytes(src, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile %s: %w", path, formatCUEError(err))
	}
	return compileAll(v)
}

// compileAll compiles every field of the top-level "network" struct.
func compileAll(v cue.Value) ([]*Spec, error) {
	nv := v.LookupPath(cue.ParsePath("network"))
	if !nv.Exists() {
		return nil, nil
	}
	iter, err := nv.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var specs []*Spec
	for iter.Next() {
		s, err := Compile(iter.Value())
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	return specs, nil
}

// Find returns the spec named name.
func Find(specs []*Spec, name string) (*Spec, bool) {
	for _, s := range specs {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// FindCUEFiles walks the directory and returns all .cue file paths, sorted.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}
