package keymap

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// Format identifies a binding file encoding.
type Format string

// Supported formats
const (
	FormatJSON   Format = "json"
	FormatTOML   Format = "toml"
	FormatYAML   Format = "yaml"
	FormatModule Format = "module"
)

// ErrUnknownFormat is returned for files with an unsupported extension.
var ErrUnknownFormat = errors.New("unknown binding file format")

// FormatFromPath picks the format from a file name. A file named
// module.json is read as a module descriptor.
func FormatFromPath(path string) (Format, error) {
	if strings.EqualFold(filepath.Base(path), "module.json") {
		return FormatModule, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, path)
}

// bindingFile is the document shape of json, toml and yaml files.
type bindingFile struct {
	Bindings []Declaration `json:"bindings" toml:"bindings" yaml:"bindings"`
}

// Loader reads binding declarations from files.
type Loader struct {
	// concurrency bounds LoadAll. Zero means no limit.
	concurrency int
}

// NewLoader creates a new loader.
func NewLoader() *Loader {
	return &Loader{concurrency: 4}
}

// SetConcurrency sets how many files LoadAll reads at once.
func (l *Loader) SetConcurrency(n int) {
	l.concurrency = n
}

// LoadFile reads the declarations in a binding file.
func (l *Loader) LoadFile(path string) ([]Declaration, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return l.decode(data, format, path)
}

// LoadReader reads declarations of the given format from r. Source is
// recorded on each declaration for error reports.
func (l *Loader) LoadReader(r io.Reader, format Format, source string) ([]Declaration, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &LoadError{Path: source, Err: err}
	}
	return l.decode(data, format, source)
}

// LoadAll reads every file concurrently and returns their declarations
// concatenated in argument order. The first failure cancels the rest.
func (l *Loader) LoadAll(ctx context.Context, paths ...string) ([]Declaration, error) {
	results := make([][]Declaration, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	if l.concurrency > 0 {
		g.SetLimit(l.concurrency)
	}
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			decls, err := l.LoadFile(path)
			if err != nil {
				return err
			}
			results[i] = decls
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []Declaration
	for _, decls := range results {
		all = append(all, decls...)
	}
	return all, nil
}

func (l *Loader) decode(data []byte, format Format, source string) ([]Declaration, error) {
	var (
		decls []Declaration
		err   error
	)
	switch format {
	case FormatJSON:
		if gjson.GetBytes(data, "extensions").IsArray() {
			decls, err = decodeModule(data)
		} else {
			decls, err = decodeJSON(data)
		}
	case FormatModule:
		decls, err = decodeModule(data)
	case FormatTOML:
		var f bindingFile
		err = toml.Unmarshal(data, &f)
		decls = f.Bindings
	case FormatYAML:
		var f bindingFile
		err = yaml.Unmarshal(data, &f)
		decls = f.Bindings
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, newLoadError(source, err)
	}

	for i := range decls {
		decls[i].Source = source
		decls[i].Position = i
	}
	return decls, nil
}

// decodeJSON accepts either {"bindings": [...]} or a bare array.
func decodeJSON(data []byte) ([]Declaration, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var decls []Declaration
		if err := json.Unmarshal(trimmed, &decls); err != nil {
			return nil, err
		}
		return decls, nil
	}
	var f bindingFile
	if err := json.Unmarshal(trimmed, &f); err != nil {
		return nil, err
	}
	return f.Bindings, nil
}

// decodeModule reads the bindings of every action extension in a module
// descriptor:
//
//	{"extensions": [{"type": "action", "actionId": "x",
//	    "bindings": [{"platform": "mac", "shortcut": "Meta-X"}]}]}
func decodeModule(data []byte) ([]Declaration, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid JSON")
	}

	var decls []Declaration
	actions := gjson.GetBytes(data, `extensions.#(type=="action")#`)
	for _, ext := range actions.Array() {
		actionID := ext.Get("actionId").String()
		for _, b := range ext.Get("bindings").Array() {
			d := Declaration{
				ActionID: actionID,
				Shortcut: b.Get("shortcut").String(),
				Platform: b.Get("platform").String(),
			}
			for _, set := range b.Get("keybindSets").Array() {
				d.KeybindSets = append(d.KeybindSets, set.String())
			}
			decls = append(decls, d)
		}
	}
	return decls, nil
}

func newLoadError(path string, err error) *LoadError {
	le := &LoadError{Path: path, Err: err}

	var tomlErr *toml.DecodeError
	if errors.As(err, &tomlErr) {
		le.Line, le.Column = tomlErr.Position()
	}
	return le
}
