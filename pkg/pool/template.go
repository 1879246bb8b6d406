package pool

import (
	"sort"

	"github.com/ajitpratap0/respawn/pkg/errors"
)

// Template produces the instances of one pool. Name is used as the pool id
// when none is given and as the prefix of every entry name.
type Template[T Poolable] interface {
	Name() string
	Instantiate(index int) (T, error)
}

// TemplateFunc adapts a constructor function to Template.
type TemplateFunc[T Poolable] struct {
	name string
	fn   func(index int) (T, error)
}

// NewTemplate returns a Template named name that builds instances with fn.
func NewTemplate[T Poolable](name string, fn func(index int) (T, error)) *TemplateFunc[T] {
	return &TemplateFunc[T]{name: name, fn: fn}
}

// Name implements Template.
func (t *TemplateFunc[T]) Name() string { return t.name }

// Instantiate implements Template.
func (t *TemplateFunc[T]) Instantiate(index int) (T, error) { return t.fn(index) }

// Factory builds an untyped instance. It is the shape templates take when
// they are looked up by name from configuration.
type Factory func(index int) (any, error)

// Catalog maps template names to factories so pools can be declared in
// configuration files. Whether a catalog product is poolable is only known
// at runtime; CreatePoolFromCatalog checks it.
type Catalog struct {
	factories map[string]Factory
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{factories: make(map[string]Factory)}
}

// Register adds a factory under name.
func (c *Catalog) Register(name string, f Factory) error {
	if name == "" || f == nil {
		return errors.New(errors.ErrorTypeValidation, "template name and factory are required")
	}
	if _, exists := c.factories[name]; exists {
		return errors.New(errors.ErrorTypeConflict, "template already registered").
			WithDetail("template", name)
	}
	c.factories[name] = f
	return nil
}

// RegisterTemplate adds a typed template to the catalog under its own name.
func RegisterTemplate[T Poolable](c *Catalog, tmpl Template[T]) error {
	return c.Register(tmpl.Name(), func(index int) (any, error) {
		return tmpl.Instantiate(index)
	})
}

// Lookup returns the factory registered under name.
func (c *Catalog) Lookup(name string) (Factory, bool) {
	f, ok := c.factories[name]
	return f, ok
}

// Names returns the registered template names, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.factories))
	for name := range c.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// catalogTemplate is the runtime-checked bridge from a Factory to Template.
type catalogTemplate struct {
	name    string
	factory Factory
}

func (t catalogTemplate) Name() string { return t.name }

func (t catalogTemplate) Instantiate(index int) (Poolable, error) {
	obj, err := t.factory(index)
	if err != nil {
		return nil, err
	}
	p, ok := obj.(Poolable)
	if !ok {
		return nil, errors.Wrap(errors.ErrInvalidTemplate, errors.ErrorTypeConfig, "catalog template does not implement Poolable").
			WithDetail("template", t.name)
	}
	return p, nil
}
