// Package position maps raw position labels to coarse position groups.
package position

import (
	"slices"
	"strings"
)

// Group is one coarse tag and the raw labels it covers.
type Group struct {
	Tag    string
	Labels []string
}

// GroupMap is an immutable, ordered tag -> labels mapping. A label may
// belong to several groups.
type GroupMap struct {
	groups []Group
	index  map[string][]string // label -> tags, in group order
}

// NewGroupMap builds a map from groups. Later duplicates of a tag are ignored.
func NewGroupMap(groups []Group) *GroupMap {
	m := &GroupMap{index: make(map[string][]string)}
	seen := make(map[string]struct{})
	for _, g := range groups {
		if _, dup := seen[g.Tag]; dup || g.Tag == "" {
			continue
		}
		seen[g.Tag] = struct{}{}
		labels := slices.Clone(g.Labels)
		m.groups = append(m.groups, Group{Tag: g.Tag, Labels: labels})
		for _, l := range labels {
			l = strings.TrimSpace(l)
			if !slices.Contains(m.index[l], g.Tag) {
				m.index[l] = append(m.index[l], g.Tag)
			}
		}
	}
	return m
}

// Tags lists the group tags in declaration order.
func (m *GroupMap) Tags() []string {
	out := make([]string, len(m.groups))
	for i, g := range m.groups {
		out[i] = g.Tag
	}
	return out
}

// Groups returns a copy of the groups.
func (m *GroupMap) Groups() []Group {
	out := make([]Group, len(m.groups))
	for i, g := range m.groups {
		out[i] = Group{Tag: g.Tag, Labels: slices.Clone(g.Labels)}
	}
	return out
}

// Has reports whether tag is a known group.
func (m *GroupMap) Has(tag string) bool {
	return slices.ContainsFunc(m.groups, func(g Group) bool { return g.Tag == tag })
}

// Classify returns every group tag whose label list contains label. An
// unknown label yields an empty, non-nil slice.
func Classify(label string, m *GroupMap) []string {
	tags := m.index[strings.TrimSpace(label)]
	return append([]string{}, tags...)
}
