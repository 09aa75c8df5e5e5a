package php

import (
	"bytes"
	"slices"
	"strings"

	"github.com/jsamuelsen11/cleanarch/internal/domain/declaration"
	"github.com/jsamuelsen11/cleanarch/internal/ports"
)

// Compile-time checks.
var (
	_ ports.SourceFile = (*File)(nil)
	_ declaration.Node = (*Declaration)(nil)
)

// File is a parsed PHP source file. It is owned by a single rewrite pass and
// is not safe for concurrent mutation.
type File struct {
	path  string
	src   []byte
	decls []*Declaration
}

// Path returns the path the file was parsed from.
func (f *File) Path() string { return f.path }

// Declarations returns the file's declarations in source order.
func (f *File) Declarations() []declaration.Node {
	nodes := make([]declaration.Node, len(f.decls))
	for i, d := range f.decls {
		nodes[i] = d
	}
	return nodes
}

// Changed reports whether any declaration gained an interface.
func (f *File) Changed() bool {
	return slices.ContainsFunc(f.decls, func(d *Declaration) bool { return len(d.added) > 0 })
}

// Render returns the source with every added interface spliced in. Added
// names are written fully qualified so no use import is needed.
func (f *File) Render() []byte {
	if !f.Changed() {
		return f.src
	}

	var buf bytes.Buffer
	buf.Grow(len(f.src) + 64*len(f.decls))

	last := uint32(0)
	for _, d := range f.decls {
		if len(d.added) == 0 {
			continue
		}
		buf.Write(f.src[last:d.insertAt])
		buf.WriteString(d.insertion())
		last = d.insertAt
	}
	buf.Write(f.src[last:])
	return buf.Bytes()
}

// Declaration is one class, interface, trait, or enum declaration.
type Declaration struct {
	kind       declaration.NodeKind
	fqn        string
	line       int
	interfaces []string
	added      []string
	insertAt   uint32
	hasClause  bool
}

// Kind implements declaration.Node.
func (d *Declaration) Kind() declaration.NodeKind { return d.kind }

// FullyQualifiedName implements declaration.Node.
func (d *Declaration) FullyQualifiedName() string { return d.fqn }

// Interfaces implements declaration.Node. Names are fully qualified without
// the leading separator.
func (d *Declaration) Interfaces() []string { return slices.Clone(d.interfaces) }

// AddInterface implements declaration.Node.
func (d *Declaration) AddInterface(name string) {
	name = strings.TrimPrefix(name, declaration.Separator)
	d.interfaces = append(d.interfaces, name)
	d.added = append(d.added, name)
}

// Line returns the 1-based line the declaration starts on.
func (d *Declaration) Line() int { return d.line }

func (d *Declaration) insertion() string {
	var b strings.Builder
	for i, name := range d.added {
		switch {
		case i > 0 || d.hasClause:
			b.WriteString(", ")
		default:
			b.WriteString(" implements ")
		}
		b.WriteString(declaration.Separator)
		b.WriteString(name)
	}
	return b.String()
}
