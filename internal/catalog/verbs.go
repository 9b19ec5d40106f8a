package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed verbs.yaml
var defaultVerbs []byte

// Whitelist is the set of semantic verb names the simulator understands.
var Whitelist = []string{
	"prescribed", "scored", "initialized", "exited", "completed", "achieved",
	"failed", "passed", "rated", "searched", "progressed", "launched",
}

// VerbCatalog resolves semantic verb names to vocabulary entries.
type VerbCatalog struct {
	byName map[string]Verb
	byID   map[string]string
}

// NewVerbCatalog indexes verbs by semantic name, dropping any verb whose
// name is not whitelisted. Later duplicates win.
func NewVerbCatalog(verbs []Verb) *VerbCatalog {
	allowed := make(map[string]bool, len(Whitelist))
	for _, w := range Whitelist {
		allowed[w] = true
	}
	vc := &VerbCatalog{
		byName: make(map[string]Verb),
		byID:   make(map[string]string),
	}
	for _, v := range verbs {
		name := SemanticName(v)
		if !allowed[name] {
			continue
		}
		vc.byName[name] = v
		vc.byID[v.ID] = name
	}
	return vc
}

// SemanticName derives the lookup name of a verb: its lowercased
// prefLabel, or the last path segment of its IRI.
func SemanticName(v Verb) string {
	if label := strings.TrimSpace(v.PrefLabel); label != "" {
		return strings.ToLower(label)
	}
	id := strings.TrimRight(v.ID, "/")
	if i := strings.LastIndexAny(id, "/#"); i >= 0 {
		id = id[i+1:]
	}
	return strings.ToLower(id)
}

// Lookup returns the verb registered under name.
func (vc *VerbCatalog) Lookup(name string) (Verb, bool) {
	if vc == nil {
		return Verb{}, false
	}
	v, ok := vc.byName[name]
	return v, ok
}

// NameOf returns the semantic name of a verb IRI.
func (vc *VerbCatalog) NameOf(id string) (string, bool) {
	if vc == nil {
		return "", false
	}
	n, ok := vc.byID[id]
	return n, ok
}

// Verbs returns the catalog entries sorted by semantic name.
func (vc *VerbCatalog) Verbs() []Verb {
	if vc == nil {
		return nil
	}
	names := make([]string, 0, len(vc.byName))
	for n := range vc.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]Verb, 0, len(names))
	for _, n := range names {
		out = append(out, vc.byName[n])
	}
	return out
}

// Len returns the number of resolved verbs.
func (vc *VerbCatalog) Len() int {
	if vc == nil {
		return 0
	}
	return len(vc.byName)
}

// LoadVerbs reads a verb vocabulary from a YAML or JSON array.
func LoadVerbs(path string) (*VerbCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read verbs %s: %w", path, err)
	}
	return ParseVerbs(data)
}

// ParseVerbs decodes a verb vocabulary.
func ParseVerbs(data []byte) (*VerbCatalog, error) {
	var verbs []Verb
	if err := yaml.Unmarshal(data, &verbs); err != nil {
		return nil, fmt.Errorf("parse verbs: %w", err)
	}
	return NewVerbCatalog(verbs), nil
}

// DefaultVerbs returns the bundled ADL-based vocabulary.
func DefaultVerbs() *VerbCatalog {
	vc, err := ParseVerbs(defaultVerbs)
	if err != nil {
		panic(fmt.Sprintf("embedded verb vocabulary is invalid: %v", err))
	}
	return vc
}
