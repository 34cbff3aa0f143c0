package domain

import "fmt"

// Definition is an ordered mapping from column name to Column. It is an
// immutable value object: Add, Remove and Modify return new Definitions
// and never mutate the receiver. Insertion order drives default DDL
// column ordering.
type Definition struct {
	names   []string
	columns map[string]*Column
}

// NewDefinition builds a Definition from (name, column) pairs in order.
// Duplicate names are rejected. Structural validity of the columns
// themselves is the validator's concern.
func NewDefinition(pairs ...ColumnEntry) (*Definition, error) {
	def := &Definition{columns: make(map[string]*Column, len(pairs))}
	for _, p := range pairs {
		if _, dup := def.columns[p.Name]; dup {
			return nil, fmt.Errorf("duplicate column %q", p.Name)
		}
		if p.Column == nil {
			return nil, fmt.Errorf("column %q is nil", p.Name)
		}
		def.names = append(def.names, p.Name)
		def.columns[p.Name] = p.Column.Clone()
	}
	return def, nil
}

// ColumnEntry is one (name, column) pair of a Definition.
type ColumnEntry struct {
	Name   string
	Column *Column
}

// Col is shorthand for constructing a ColumnEntry.
func Col(name string, column *Column) ColumnEntry {
	return ColumnEntry{Name: name, Column: column}
}

// Len returns the number of columns.
func (d *Definition) Len() int { return len(d.names) }

// Names returns the column names in declaration order.
func (d *Definition) Names() []string {
	return append([]string(nil), d.names...)
}

// Column returns the column for name.
func (d *Definition) Column(name string) (*Column, bool) {
	c, ok := d.columns[name]
	if !ok {
		return nil, false
	}
	return c.Clone(), true
}

// Each calls fn for every column in declaration order.
func (d *Definition) Each(fn func(name string, col *Column)) {
	for _, name := range d.names {
		fn(name, d.columns[name])
	}
}

// Add returns a new Definition with the column appended.
func (d *Definition) Add(name string, col *Column) (*Definition, error) {
	if _, exists := d.columns[name]; exists {
		return nil, fmt.Errorf("column %q already exists", name)
	}
	entries := d.entries()
	entries = append(entries, Col(name, col))
	return NewDefinition(entries...)
}

// Remove returns a new Definition without the named column.
func (d *Definition) Remove(name string) (*Definition, error) {
	if _, exists := d.columns[name]; !exists {
		return nil, fmt.Errorf("column %q does not exist", name)
	}
	var entries []ColumnEntry
	for _, e := range d.entries() {
		if e.Name != name {
			entries = append(entries, e)
		}
	}
	return NewDefinition(entries...)
}

// Modify returns a new Definition with the named column replaced, keeping
// its position.
func (d *Definition) Modify(name string, col *Column) (*Definition, error) {
	if _, exists := d.columns[name]; !exists {
		return nil, fmt.Errorf("column %q does not exist", name)
	}
	entries := d.entries()
	for i := range entries {
		if entries[i].Name == name {
			entries[i].Column = col
		}
	}
	return NewDefinition(entries...)
}

// PrimaryKey returns the primary-key column name, if any.
func (d *Definition) PrimaryKey() (string, bool) {
	for _, name := range d.names {
		if d.columns[name].PrimaryKey {
			return name, true
		}
	}
	return "", false
}

func (d *Definition) entries() []ColumnEntry {
	entries := make([]ColumnEntry, 0, len(d.names))
	for _, name := range d.names {
		entries = append(entries, Col(name, d.columns[name]))
	}
	return entries
}
