package section

// Catalog holds the per-structure metadata of a file in catalog order.
type Catalog struct {
	IDs   []string
	Names []string
	// Values holds every structure variable value, indexed [structure][variable]
	// with variables in descriptor order.
	Values [][]Value

	variables []Variable
	byID      map[string]int
}

func newCatalog(n int, variables []Variable) *Catalog {
	return &Catalog{
		IDs:       make([]string, n),
		Names:     make([]string, n),
		Values:    make([][]Value, n),
		variables: variables,
	}
}

// Len returns the number of structures.
func (c *Catalog) Len() int {
	return len(c.IDs)
}

// IndexOf returns the catalog index of a structure ID, or -1.
// When IDs repeat, the first catalog index wins.
func (c *Catalog) IndexOf(id string) int {
	if i, ok := c.byID[id]; ok {
		return i
	}

	return -1
}

// buildIndex must run once all IDs are assigned.
func (c *Catalog) buildIndex() {
	c.byID = make(map[string]int, len(c.IDs))
	for i, id := range c.IDs {
		if _, dup := c.byID[id]; !dup {
			c.byID[id] = i
		}
	}
}

// Attribute returns the raw value of a named structure variable for one structure.
// Reserved variables are available here too.
func (c *Catalog) Attribute(index int, name string) (Value, bool) {
	if index < 0 || index >= len(c.Values) {
		return Value{}, false
	}

	for i := range c.variables {
		if c.variables[i].Is(name) && i < len(c.Values[index]) {
			return c.Values[index][i], true
		}
	}

	return Value{}, false
}

// AttributeNames returns the structure variable names in descriptor order.
func (c *Catalog) AttributeNames() []string {
	names := make([]string, len(c.variables))
	for i := range c.variables {
		names[i] = c.variables[i].Name
	}

	return names
}
