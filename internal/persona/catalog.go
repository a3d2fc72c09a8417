// internal/persona/catalog.go
package persona

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed personas.yaml
var builtinPersonas []byte

// ErrUnknownPersona is returned when a persona id is not in the catalog.
var ErrUnknownPersona = errors.New("unknown persona")

// Catalog is a read-only table of personas keyed by id. It is safe for
// concurrent use because nothing can modify it after construction.
type Catalog struct {
	byID map[string]Persona
	ids  []string
}

type catalogFile struct {
	Personas []Persona `yaml:"personas"`
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the built-in catalog, parsing it on first use.
func Default() *Catalog {
	defaultOnce.Do(func() {
		list, err := decode(bytes.NewReader(builtinPersonas))
		if err != nil {
			panic(fmt.Sprintf("persona: built-in catalog is invalid: %v", err))
		}
		c, err := newCatalog(nil, list)
		if err != nil {
			panic(fmt.Sprintf("persona: built-in catalog is invalid: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Parse decodes a YAML persona document and layers its entries over the
// built-in catalog. Entries whose id already exists replace the built-in one.
func Parse(data []byte) (*Catalog, error) {
	list, err := decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return newCatalog(Default(), list)
}

// LoadFile reads a YAML persona document from path; see Parse.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open persona file: %w", err)
	}
	defer f.Close()

	list, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load persona file %s: %w", path, err)
	}
	return newCatalog(Default(), list)
}

func decode(r io.Reader) ([]Persona, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc catalogFile
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("persona document is empty")
		}
		return nil, fmt.Errorf("failed to decode personas: %w", err)
	}
	return doc.Personas, nil
}

func newCatalog(base *Catalog, list []Persona) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]Persona)}
	if base != nil {
		for id, p := range base.byID {
			c.byID[id] = p
		}
	}

	seen := make(map[string]bool, len(list))
	for i := range list {
		p := list[i]
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("persona %q is declared more than once", p.ID)
		}
		seen[p.ID] = true
		c.byID[p.ID] = *p.Clone()
	}

	c.ids = make([]string, 0, len(c.byID))
	for id := range c.byID {
		c.ids = append(c.ids, id)
	}
	sort.Strings(c.ids)
	return c, nil
}

// Get returns a copy of the persona registered under id.
func (c *Catalog) Get(id string) (*Persona, error) {
	p, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPersona, id)
	}
	return p.Clone(), nil
}

// IDs lists the persona ids in lexical order.
func (c *Catalog) IDs() []string {
	out := make([]string, len(c.ids))
	copy(out, c.ids)
	return out
}

// Len returns the number of personas in the catalog.
func (c *Catalog) Len() int {
	return len(c.ids)
}
