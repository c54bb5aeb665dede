// Package query resolves category names and filters transactions.
package query

import (
	"strings"

	"github.com/hbtools/hbq/internal/model"
)

// CategorySet is a set of category ids. Resolving a name can legitimately
// produce several categories (the same leaf name under different parents),
// so callers aggregate over the whole set rather than assuming a single
// match.
type CategorySet map[model.CategoryID]struct{}

// NewCategorySet builds a set from the given ids.
func NewCategorySet(ids ...model.CategoryID) CategorySet {
	s := make(CategorySet, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts an id into the set.
func (s CategorySet) Add(id model.CategoryID) {
	s[id] = struct{}{}
}

// Contains reports set membership.
func (s CategorySet) Contains(id model.CategoryID) bool {
	_, ok := s[id]
	return ok
}

// Union returns a new set holding the members of both sets.
func (s CategorySet) Union(other CategorySet) CategorySet {
	out := make(CategorySet, len(s)+len(other))
	for id := range s {
		out.Add(id)
	}
	for id := range other {
		out.Add(id)
	}
	return out
}

// Resolve finds the categories matching a user-supplied name.
//
// A name containing the ":" separator is split into parent and child on
// the first separator; it matches categories whose own name equals the
// child part and whose parent's name equals the parent part. A bare name
// matches any category with that name at any depth, which may be several
// when different parents share a leaf name. Matching is exact byte
// equality, the same comparison HomeBank itself applies to stored names.
//
// An empty result is not an error; it simply produces empty aggregates
// downstream.
func Resolve(m *model.Model, name string) CategorySet {
	set := make(CategorySet)

	parent, child, qualified := strings.Cut(name, ":")
	if qualified {
		for id, cat := range m.Categories {
			if cat.Name != child || cat.Parent == 0 {
				continue
			}
			if p, ok := m.Categories[cat.Parent]; ok && p.Name == parent {
				set.Add(id)
			}
		}
		return set
	}

	for id, cat := range m.Categories {
		if cat.Name == name {
			set.Add(id)
		}
	}
	return set
}
