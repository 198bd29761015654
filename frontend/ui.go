package frontend

import (
	"sort"

	mapset "github.com/deckarep/golang-set"
)

// UISchema lists the UI elements a `show` block may use, with the named
// properties and events each one accepts. Style keys are accepted on every
// element, both as named properties and inside a style map
type UISchema struct {
	Elements map[string]*UIElementSpec
	Style    mapset.Set
}

// UIElementSpec is the property and event set of one element type
type UIElementSpec struct {
	Properties mapset.Set
	Events     mapset.Set
}

func newStringSet(items ...string) mapset.Set {
	set := mapset.NewSet()
	for _, item := range items {
		set.Add(item)
	}
	return set
}

// DefaultUISchema returns the built-in element set
func DefaultUISchema() *UISchema {
	s := &UISchema{
		Elements: make(map[string]*UIElementSpec),
		Style: newStringSet(
			"padding", "margin", "color", "background", "width", "height",
			"align", "spacing", "font_size", "bold", "border", "radius",
			"visible", "weight",
		),
	}

	s.Define("column", nil, nil)
	s.Define("row", nil, []string{"when_clicked"})
	s.Define("stack", nil, nil)
	s.Define("scroll", nil, nil)
	s.Define("card", nil, []string{"when_clicked"})
	s.Define("spacer", []string{"size"}, nil)
	s.Define("text", []string{"value"}, []string{"when_clicked"})
	s.Define("button", []string{"label", "enabled"}, []string{"when_clicked", "when_long_pressed"})
	s.Define("input", []string{"value", "placeholder", "enabled"}, []string{"when_changed", "when_submitted"})
	s.Define("checkbox", []string{"checked", "label"}, []string{"when_changed"})
	s.Define("slider", []string{"value", "min", "max", "step"}, []string{"when_changed"})
	s.Define("image", []string{"source", "description"}, []string{"when_clicked"})
	s.Define("list", []string{"items"}, []string{"when_selected"})

	return s
}

// Define adds an element, or extends an existing one with more properties
// and events. Handlers may be written `when_x` or `on_x`; both spellings of
// every event are accepted
func (s *UISchema) Define(name string, properties, events []string) {
	spec, ok := s.Elements[name]
	if !ok {
		spec = &UIElementSpec{Properties: mapset.NewSet(), Events: mapset.NewSet()}
		s.Elements[name] = spec
	}

	for _, p := range properties {
		spec.Properties.Add(p)
	}

	for _, e := range events {
		spec.Events.Add(e)
		spec.Events.Add(alternateEventName(e))
	}
}

func alternateEventName(event string) string {
	switch {
	case len(event) > 5 && event[:5] == "when_":
		return "on_" + event[5:]
	case len(event) > 3 && event[:3] == "on_":
		return "when_" + event[3:]
	}
	return event
}

// Element returns the spec of a known element
func (s *UISchema) Element(name string) (spec *UIElementSpec, ok bool) {
	spec, ok = s.Elements[name]
	return spec, ok
}

// HasProperty reports whether an element accepts a named property or style
// key
func (s *UISchema) HasProperty(spec *UIElementSpec, name string) bool {
	return spec.Properties.Contains(name) || s.Style.Contains(name)
}

// Names returns the element names in sorted order
func (s *UISchema) Names() []string {
	names := make([]string, 0, len(s.Elements))
	for name := range s.Elements {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// sortedStrings returns the members of a set of strings in sorted order
func sortedStrings(set mapset.Set) []string {
	var out []string
	for _, item := range set.ToSlice() {
		out = append(out, item.(string))
	}
	sort.Strings(out)
	return out
}
