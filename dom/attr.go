package dom

import "strings"

// Attr is a single name/value pair of an element's attribute bag.
type Attr struct {
	Name  string
	Value string
}

// attributes is an insertion-ordered string map. Names are stored lower-case.
type attributes []Attr

func (a attributes) index(name string) int {
	for i := range a {
		if a[i].Name == name {
			return i
		}
	}
	return -1
}

func (a attributes) get(name string) (string, bool) {
	if i := a.index(name); i >= 0 {
		return a[i].Value, true
	}
	return "", false
}

func (a *attributes) set(name, value string) {
	if i := a.index(name); i >= 0 {
		(*a)[i].Value = value
		return
	}
	*a = append(*a, Attr{Name: name, Value: value})
}

func (a *attributes) remove(name string) bool {
	i := a.index(name)
	if i < 0 {
		return false
	}
	*a = append((*a)[:i], (*a)[i+1:]...)
	return true
}

func (a attributes) clone() attributes {
	if len(a) == 0 {
		return nil
	}
	c := make(attributes, len(a))
	copy(c, a)
	return c
}

func normalizeAttrName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
