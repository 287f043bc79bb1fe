package types

// Category groups tags under a main name with an ordered list of
// subcategory names. Main is the record key; Sub entries are unique.
type Category struct {
	Main string   `json:"main"`
	Sub  []string `json:"sub"`
}

// Clone returns a deep copy.
func (c Category) Clone() Category {
	sub := make([]string, len(c.Sub))
	copy(sub, c.Sub)
	return Category{Main: c.Main, Sub: sub}
}

// HasSub reports whether name is one of the subcategories.
func (c Category) HasSub(name string) bool {
	for _, s := range c.Sub {
		if s == name {
			return true
		}
	}
	return false
}

// AddSub appends name if it is not already present.
// Returns true if the category changed.
func (c *Category) AddSub(name string) bool {
	if name == "" || c.HasSub(name) {
		return false
	}
	c.Sub = append(c.Sub, name)
	return true
}

// RemoveSub drops name from the subcategory list.
// Returns true if the category changed.
func (c *Category) RemoveSub(name string) bool {
	out := c.Sub[:0:0]
	found := false
	for _, s := range c.Sub {
		if s == name {
			found = true
			continue
		}
		out = append(out, s)
	}
	if found {
		c.Sub = out
	}
	return found
}

// RenameSub replaces oldName with newName in place, keeping its position.
// Returns ErrNotFound if oldName is absent and ErrDuplicateName if newName
// already exists.
func (c *Category) RenameSub(oldName, newName string) error {
	if newName == "" {
		return ErrInvalidName
	}
	if oldName == newName {
		if !c.HasSub(oldName) {
			return ErrNotFound
		}
		return nil
	}
	if c.HasSub(newName) {
		return ErrDuplicateName
	}
	for i, s := range c.Sub {
		if s == oldName {
			c.Sub[i] = newName
			return nil
		}
	}
	return ErrNotFound
}
