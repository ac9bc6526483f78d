// Package paramsrc loads named parameter sets from CUE and YAML files.
//
// A parameter file has two top-level sections:
//
//	params: {
//		fifo: {depth: 16, width: 8, name: "rx"}
//	}
//	types: {
//		fifo: {width: "ui8"}
//	}
//
// Each entry under params is one ParamSet. Entries under types declare an
// explicit integer type for some of a set's parameters; every other integer
// is encoded at the default width.
package paramsrc

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/hashicorp/go-multierror"

	"github.com/roach88/hwparam/internal/encode"
	"github.com/roach88/hwparam/internal/ir"
	"github.com/roach88/hwparam/internal/value"
)

// LoadMode controls how errors are handled during directory loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// ParamSet is one named group of parameters.
type ParamSet struct {
	Name   string
	Source string
	Params value.Map
	Types  map[string]ir.IntegerType
}

// LoadFile loads every parameter set in path. The format is chosen by
// extension: .cue, .yaml, or .yml.
func LoadFile(path string) ([]ParamSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("file not found: %s", path)}
		}
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading %s: %v", path, err)}
	}

	switch filepath.Ext(path) {
	case ".cue":
		return loadCUE(path, data)
	case ".yaml", ".yml":
		return loadYAML(path, data)
	default:
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("unsupported file type: %s", path)}
	}
}

// LoadDir loads every parameter file under dir, in lexical path order.
// In LoadModeCollectAll, the returned error is a *multierror.Error holding
// every failure, and the sets from files that loaded cleanly are returned.
func LoadDir(dir string, mode LoadMode) ([]ParamSet, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("directory not found: %s", dir)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	files, err := FindParamFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(files) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no parameter files found in %s", dir)}
	}

	var (
		sets   []ParamSet
		result *multierror.Error
		seen   = make(map[string]string)
	)
	for _, f := range files {
		loaded, err := LoadFile(f)
		if err != nil {
			if mode == LoadModeFailFast {
				return sets, err
			}
			result = multierror.Append(result, err)
			continue
		}
		for _, ps := range loaded {
			if prev, dup := seen[ps.Name]; dup {
				err := &LoadError{
					Code:    ErrCodeDuplicateSet,
					Message: fmt.Sprintf("parameter set %q already defined in %s", ps.Name, prev),
					File:    ps.Source,
				}
				if mode == LoadModeFailFast {
					return sets, err
				}
				result = multierror.Append(result, err)
				continue
			}
			seen[ps.Name] = ps.Source
			sets = append(sets, ps)
		}
	}

	return sets, result.ErrorOrNil()
}

// FindParamFiles walks dir and returns all parameter file paths in lexical
// order.
func FindParamFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".cue", ".yaml", ".yml":
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// EncodeSet encodes every parameter of ps. Parameters with a declared type
// go through encode.EncodeTyped; the rest through encode.Encode.
func EncodeSet(ps ParamSet) (ir.DictAttr, error) {
	fields := ps.Params.Fields()
	named := make([]ir.NamedAttr, 0, len(fields))
	for _, f := range fields {
		var (
			a   ir.Attribute
			err error
		)
		if t, ok := ps.Types[f.Name]; ok {
			a, err = encode.EncodeTyped(f.Value, t)
		} else {
			a, err = encode.Encode(f.Value)
		}
		if err != nil {
			return nil, fmt.Errorf("params.%s.%s: %w", ps.Name, f.Name, err)
		}
		named = append(named, ir.NA(f.Name, a))
	}
	return ir.MakeDict(named...)
}

// checkTypes verifies that every declared type names an existing parameter.
func checkTypes(ps ParamSet) error {
	names := make([]string, 0, len(ps.Types))
	for name := range ps.Types {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if _, ok := ps.Params.Get(name); !ok {
			return &LoadError{
				Code:    ErrCodeInvalidType,
				Message: fmt.Sprintf("types.%s.%s: no such parameter", ps.Name, name),
				File:    ps.Source,
			}
		}
	}
	return nil
}
