package taxonomy

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// Source produces a compiled taxonomy. Analyzers only ever see the result, so
// rule data can come from anywhere that satisfies it.
type Source interface {
	// Load reads, validates and compiles a complete taxonomy
	Load() (*Taxonomy, error)
}

// Loader loads the embedded builtin rule files and, when configured, a user
// directory whose rule sets are added to or replace builtin ones by name
type Loader struct {
	userDir  string
	validate *validator.Validate
}

// NewLoader creates a loader. An empty userDir loads builtin rules only.
func NewLoader(userDir string) *Loader {
	return &Loader{
		userDir:  userDir,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// UserDir returns the configured user rules directory
func (l *Loader) UserDir() string {
	return l.userDir
}

// Load implements Source
func (l *Loader) Load() (*Taxonomy, error) {
	builtin, err := l.LoadBuiltin()
	if err != nil {
		return nil, err
	}

	user, err := l.LoadUser()
	if err != nil {
		return nil, err
	}

	return Build(builtin, user)
}

// LoadBuiltin parses every embedded rule file
func (l *Loader) LoadBuiltin() ([]File, error) {
	var files []File

	err := fs.WalkDir(builtinFS, "builtin", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || !isRuleFile(p) {
			return nil
		}

		data, err := builtinFS.ReadFile(p)
		if err != nil {
			return fmt.Errorf("reading %s: %w", p, err)
		}

		f, err := l.Parse(data, path.Clean(p))
		if err != nil {
			return err
		}

		files = append(files, f)

		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug().Int("files", len(files)).Msg("loaded builtin taxonomy files")

	return files, nil
}

// LoadUser parses the rule files in the user directory. A missing directory
// is not an error.
func (l *Loader) LoadUser() ([]File, error) {
	if l.userDir == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(l.userDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug().Str("dir", l.userDir).Msg("user taxonomy directory does not exist")
			return nil, nil
		}

		return nil, fmt.Errorf("reading taxonomy directory: %w", err)
	}

	var files []File

	for _, entry := range entries {
		if entry.IsDir() || !isRuleFile(entry.Name()) {
			continue
		}

		p := filepath.Join(l.userDir, entry.Name())

		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}

		f, err := l.Parse(data, p)
		if err != nil {
			return nil, err
		}

		files = append(files, f)
	}

	log.Debug().Str("dir", l.userDir).Int("files", len(files)).Msg("loaded user taxonomy files")

	return files, nil
}

// Parse decodes and validates a single rule file. Unknown keys are rejected.
func (l *Loader) Parse(data []byte, source string) (File, error) {
	var f File

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return File{}, fmt.Errorf("%w: %s", ErrEmptyFile, source)
		}

		return File{}, fmt.Errorf("%w: %s: %v", ErrInvalidRuleFile, source, err)
	}

	if err := l.validate.Struct(f); err != nil {
		return File{}, fmt.Errorf("%w: %s: %v", ErrInvalidRuleFile, source, err)
	}

	f.source = source

	return f, nil
}

// Build merges builtin and override files into a compiled taxonomy. Builtin
// files may not redefine each other's sets, and neither may override files;
// an override set replaces the builtin set of the same name.
func Build(builtin, overrides []File) (*Taxonomy, error) {
	t := &Taxonomy{sets: make(map[string]*RuleSet)}

	if err := t.add(builtin, false); err != nil {
		return nil, err
	}

	if err := t.add(overrides, true); err != nil {
		return nil, err
	}

	for _, name := range RequiredRuleSets {
		if !t.Has(name) {
			return nil, fmt.Errorf("%w: %s", ErrMissingRuleSet, name)
		}
	}

	return t, nil
}

// add compiles the sets of files into t
func (t *Taxonomy) add(files []File, override bool) error {
	seen := make(map[string]string)

	for _, f := range files {
		if f.Version > t.version {
			t.version = f.Version
		}

		for _, set := range f.RuleSets {
			if prev, dup := seen[set.Name]; dup {
				return fmt.Errorf("%w: %s defined in %s and %s", ErrDuplicateRuleSet, set.Name, prev, f.source)
			}

			seen[set.Name] = f.source

			compiled, err := compileSet(set)
			if err != nil {
				return fmt.Errorf("%s: %w", f.source, err)
			}

			if override && t.Has(set.Name) {
				log.Debug().Str("set", set.Name).Str("file", f.source).Msg("user rule set replaces builtin")
			}

			t.sets[set.Name] = compiled
		}
	}

	return nil
}

// compileSet copies set and compiles every rule of the copy
func compileSet(set RuleSet) (*RuleSet, error) {
	out := &RuleSet{
		Name:        set.Name,
		Description: set.Description,
		Rules:       make([]Rule, len(set.Rules)),
	}

	copy(out.Rules, set.Rules)

	ids := make(map[string]struct{}, len(out.Rules))

	for i := range out.Rules {
		r := &out.Rules[i]

		if _, dup := ids[r.ID]; dup {
			return nil, fmt.Errorf("%w: %s in %s", ErrDuplicateRule, r.ID, set.Name)
		}

		ids[r.ID] = struct{}{}

		if err := compileRule(r); err != nil {
			return nil, fmt.Errorf("%s/%s: %w", set.Name, r.ID, err)
		}
	}

	return out, nil
}

// compileRule folds literals and compiles patterns in place
func compileRule(r *Rule) error {
	if len(r.Literals) == 0 && len(r.Patterns) == 0 {
		return ErrEmptyRule
	}

	r.folded = make([]string, 0, len(r.Literals))

	for _, lit := range r.Literals {
		if r.CaseSensitive {
			r.folded = append(r.folded, Normalize(lit))
		} else {
			r.folded = append(r.folded, Fold(lit))
		}
	}

	r.compiled = make([]*regexp.Regexp, 0, len(r.Patterns))

	for _, p := range r.Patterns {
		expr := p
		if !r.CaseSensitive {
			expr = "(?i)" + p
		}

		re, err := regexp.Compile(expr)
		if err != nil {
			return fmt.Errorf("%w: %q: %v", ErrInvalidPattern, p, err)
		}

		r.compiled = append(r.compiled, re)
	}

	return nil
}

// isRuleFile reports whether name has a YAML extension
func isRuleFile(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}

var defaultTaxonomy = sync.OnceValues(func() (*Taxonomy, error) {
	return NewLoader("").Load()
})

// Default returns the builtin taxonomy, loading it on first use. The builtin
// files ship inside the binary, so a failure here is a programming error.
func Default() *Taxonomy {
	t, err := defaultTaxonomy()
	if err != nil {
		panic(fmt.Sprintf("loading builtin taxonomy: %v", err))
	}

	return t
}
