package graph

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/aretw0/typeguard/pkg/descriptor"
	"github.com/aretw0/typeguard/pkg/violation"
)

// Overlay contains the outcome of a check to visualize on the graph.
type Overlay struct {
	// Failed holds the value paths that violations were reported under.
	Failed []string
}

// OverlayFrom marks the paths of every simple violation in vs, including
// those nested in combined violations.
func OverlayFrom(vs []violation.Violation) *Overlay {
	o := &Overlay{}
	var walk func([]violation.Violation)
	walk = func(vs []violation.Violation) {
		for _, v := range vs {
			switch v := v.(type) {
			case *violation.Simple:
				o.Failed = append(o.Failed, v.Path)
			case *violation.Complex:
				walk(v.Children)
			}
		}
	}
	walk(vs)
	return o
}

// GenerateMermaid produces a Mermaid flowchart of a type expression tree.
// It applies semantic styling:
// - Type variable: ((Circle)), one node per variable however often it occurs
// - Union: {{Hexagon}}
// - Literal set: [/Parallelogram/]
// - Callable: [[Subroutine]]
// - Default: [Rectangle]
// Nodes validated under a path listed in the overlay are styled as failed.
func GenerateMermaid(name string, d descriptor.Descriptor, overlay *Overlay) string {
	g := &generator{vars: make(map[*descriptor.TypeVar]string)}
	g.sb.WriteString("graph TD\n")
	g.node(d, name)

	if overlay != nil && len(overlay.Failed) > 0 {
		g.sb.WriteString("\n    %% Overlay Styles\n")
		g.sb.WriteString("    classDef failed fill:#ffcdd2,stroke:#b71c1c,stroke-width:2px,color:#000;\n")
		seen := make(map[string]bool)
		for _, n := range g.nodes {
			if seen[n.id] || !slices.Contains(overlay.Failed, n.path) {
				continue
			}
			seen[n.id] = true
			g.sb.WriteString(fmt.Sprintf("    class %s failed;\n", n.id))
		}
	}
	return g.sb.String()
}

type placed struct {
	id   string
	path string
}

type generator struct {
	sb    strings.Builder
	next  int
	vars  map[*descriptor.TypeVar]string
	nodes []placed
}

func (g *generator) emit(path, opener, label, closer string) string {
	id := fmt.Sprintf("n%d", g.next)
	g.next++
	g.nodes = append(g.nodes, placed{id: id, path: path})
	g.sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", id, opener, sanitizeLabel(label), closer))
	return id
}

func (g *generator) edge(from, label, to string) {
	if label == "" {
		g.sb.WriteString(fmt.Sprintf("    %s --> %s\n", from, to))
		return
	}
	g.sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> %s\n", from, sanitizeLabel(label), to))
}

// node writes d and its children and returns the node ID. path follows the
// paths the validator reports under: container elements keep the parent's
// path, record fields extend it with ".name".
func (g *generator) node(d descriptor.Descriptor, path string) string {
	switch d := d.(type) {
	case nil, descriptor.Wildcard:
		return g.emit(path, "[", "any", "]")
	case *descriptor.Primitive:
		return g.emit(path, "[", d.String(), "]")
	case *descriptor.TypeVar:
		if id, ok := g.vars[d]; ok {
			g.nodes = append(g.nodes, placed{id: id, path: path})
			return id
		}
		id := g.emit(path, "((", typeVarLabel(d), "))")
		g.vars[d] = id
		return id
	case *descriptor.LiteralSet:
		return g.emit(path, "[/", d.String(), "/]")
	case *descriptor.Union:
		id := g.emit(path, "{{", "union", "}}")
		for _, alt := range d.Alternatives {
			g.edge(id, "", g.node(alt, path))
		}
		return id
	case *descriptor.Container:
		id := g.emit(path, "[", d.Collection.String(), "]")
		if d.Elem != nil {
			g.edge(id, "elem", g.node(d.Elem, path))
		}
		return id
	case *descriptor.Tuple:
		id := g.emit(path, "[", "tuple", "]")
		for i, e := range d.Elems {
			label := fmt.Sprint(i)
			if d.Variadic {
				label = "..."
			}
			g.edge(id, label, g.node(e, path))
		}
		return id
	case *descriptor.Mapping:
		id := g.emit(path, "[", "dict", "]")
		if d.Key != nil {
			g.edge(id, "key", g.node(d.Key, fmt.Sprintf("key in `%s`", path)))
		}
		if d.Value != nil {
			g.edge(id, "value", g.node(d.Value, fmt.Sprintf("value in `%s`", path)))
		}
		return id
	case *descriptor.Record:
		id := g.emit(path, "[", "record", "]")
		for _, f := range d.Fields {
			label := f.Name
			if f.Optional {
				label += "?"
			}
			g.edge(id, label, g.node(f.Type, path+"."+f.Name))
		}
		return id
	case *descriptor.TypeOf:
		id := g.emit(path, "[", "type", "]")
		if d.Inner != nil {
			g.edge(id, "of", g.node(d.Inner, path))
		}
		return id
	case *descriptor.Callable:
		id := g.emit(path, "[[", "callable", "]]")
		if !d.Declared {
			return id
		}
		for i, p := range d.Params {
			g.edge(id, fmt.Sprintf("arg %d", i+1), g.node(p, path))
		}
		if d.Return != nil {
			g.edge(id, "return", g.node(d.Return, path))
		}
		return id
	}
	return g.emit(path, "[", d.String(), "]")
}

func typeVarLabel(v *descriptor.TypeVar) string {
	if len(v.Constraints) == 0 {
		return v.Name
	}
	names := make([]string, len(v.Constraints))
	for i, c := range v.Constraints {
		names[i] = typeName(c)
	}
	return v.Name + ": " + strings.Join(names, ", ")
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "none"
	}
	return t.String()
}

func sanitizeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
