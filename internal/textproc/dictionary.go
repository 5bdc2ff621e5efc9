package textproc

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Rule is one user-defined substitution. Literal rules replace every
// occurrence of Match; pattern rules treat Match as a regular
// expression and support capture references in Replace.
type Rule struct {
	Match   string `yaml:"match"`
	Replace string `yaml:"replace"`
	Pattern bool   `yaml:"pattern,omitempty"`
}

type rulesFile struct {
	Rules []Rule `yaml:"rules"`
}

type compiledRule struct {
	literal string
	replace string
	re      *regexp.Regexp
}

// Dictionary holds the user's replacement rules, loaded from a YAML
// file. Apply is pure and total: invalid patterns are rejected at load
// time, never during application.
type Dictionary struct {
	path string

	mu    sync.RWMutex
	rules []compiledRule
}

// NewDictionary creates a dictionary backed by the given rules file.
// The dictionary is empty until Load succeeds.
func NewDictionary(path string) *Dictionary {
	return &Dictionary{path: path}
}

// Load reads and compiles the rules file. A missing file yields an
// empty dictionary without error; a malformed file or pattern leaves
// the previously loaded rules in place.
func (d *Dictionary) Load() error {
	data, err := os.ReadFile(d.path)
	if err != nil {
		if os.IsNotExist(err) {
			d.mu.Lock()
			d.rules = nil
			d.mu.Unlock()
			return nil
		}
		return fmt.Errorf("read rules file %q: %w", d.path, err)
	}

	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse rules file %q: %w", d.path, err)
	}

	compiled := make([]compiledRule, 0, len(f.Rules))
	for i, r := range f.Rules {
		if r.Match == "" {
			continue
		}
		if r.Pattern {
			re, err := regexp.Compile(r.Match)
			if err != nil {
				return fmt.Errorf("rule %d: compile pattern %q: %w", i, r.Match, err)
			}
			compiled = append(compiled, compiledRule{re: re, replace: r.Replace})
		} else {
			compiled = append(compiled, compiledRule{literal: r.Match, replace: r.Replace})
		}
	}

	d.mu.Lock()
	d.rules = compiled
	d.mu.Unlock()
	return nil
}

// Apply runs every rule over the text in file order.
func (d *Dictionary) Apply(text string) string {
	d.mu.RLock()
	rules := d.rules
	d.mu.RUnlock()

	for _, r := range rules {
		if r.re != nil {
			text = r.re.ReplaceAllString(text, r.replace)
		} else {
			text = strings.ReplaceAll(text, r.literal, r.replace)
		}
	}
	return text
}

// Len reports the number of loaded rules.
func (d *Dictionary) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rules)
}

// WatchAndReload watches the rules file's directory and reloads on
// change. Blocks until the done channel is closed.
func (d *Dictionary) WatchAndReload(done <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(d.path)); err != nil {
		return fmt.Errorf("watch dir %q: %w", filepath.Dir(d.path), err)
	}

	for {
		select {
		case <-done:
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != d.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if err := d.Load(); err != nil {
					// Keep serving the previous rules on a bad edit.
					continue
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}
