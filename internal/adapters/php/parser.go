// Package php parses PHP source into declaration nodes with tree-sitter and
// renders the source back with injected interfaces.
//
// Only the top level of a file and the bodies of braced namespaces are
// scanned: class declarations nested in functions or conditionals are not
// reported. Edits are pure insertions, so formatting and comments around a
// declaration are preserved byte for byte.
package php

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/php"

	"github.com/jsamuelsen11/cleanarch/internal/domain/declaration"
	"github.com/jsamuelsen11/cleanarch/internal/ports"
)

// ErrSyntax is returned when the source does not parse cleanly.
var ErrSyntax = errors.New("php: syntax error")

// Compile-time check that Parser implements ports.DeclarationParser.
var _ ports.DeclarationParser = (*Parser)(nil)

// Parser is stateless; a tree-sitter parser is created per call so Parse is
// safe for concurrent use.
type Parser struct{}

// NewParser creates a Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse builds a File from src. Sources with syntax errors are rejected so
// that a rewrite never edits a file it does not fully understand.
func (p *Parser) Parse(ctx context.Context, path string, src []byte) (ports.SourceFile, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(php.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		line := firstErrorLine(root)
		return nil, fmt.Errorf("%s:%d: %w", path, line, ErrSyntax)
	}

	w := &walker{src: src, file: &File{path: path, src: src}}
	w.scope(root, "")
	return w.file, nil
}

// walker collects declarations while tracking the current namespace and the
// use imports in effect.
type walker struct {
	src     []byte
	file    *File
	imports map[string]string // lower-case alias -> fully-qualified name
}

func (w *walker) text(n *sitter.Node) string {
	return n.Content(w.src)
}

// scope walks the statements of a program or a braced namespace body.
func (w *walker) scope(parent *sitter.Node, namespace string) {
	for i := range int(parent.NamedChildCount()) {
		child := parent.NamedChild(i)

		switch child.Type() {
		case "namespace_definition":
			name := ""
			if n := child.ChildByFieldName("name"); n != nil {
				name = strings.TrimPrefix(w.text(n), declaration.Separator)
			}
			w.imports = nil
			if body := child.ChildByFieldName("body"); body != nil {
				w.scope(body, name)
				w.imports = nil
				continue
			}
			// Unbraced form: the namespace applies to the following siblings.
			namespace = name

		case "namespace_use_declaration":
			w.collectUses(child)

		case "class_declaration":
			w.declare(child, declaration.KindClass, namespace)
		case "interface_declaration":
			w.declare(child, declaration.KindInterface, namespace)
		case "trait_declaration":
			w.declare(child, declaration.KindTrait, namespace)
		case "enum_declaration":
			w.declare(child, declaration.KindEnum, namespace)
		}
	}
}

func (w *walker) declare(n *sitter.Node, kind declaration.NodeKind, namespace string) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := w.text(nameNode)

	d := &Declaration{
		kind:     kind,
		fqn:      declaration.Join(namespace, name),
		line:     int(n.StartPoint().Row) + 1,
		insertAt: nameNode.EndByte(),
	}

	for i := range int(n.NamedChildCount()) {
		child := n.NamedChild(i)
		switch child.Type() {
		case "base_clause":
			d.insertAt = child.EndByte()
		case "class_interface_clause":
			d.insertAt = child.EndByte()
			d.hasClause = true
			for j := range int(child.NamedChildCount()) {
				iface := child.NamedChild(j)
				if !isNameNode(iface) {
					continue
				}
				d.interfaces = append(d.interfaces, w.resolve(w.text(iface), namespace))
			}
		}
	}

	w.file.decls = append(w.file.decls, d)
}

// collectUses records class imports. Function and constant imports do not
// affect class name resolution and are ignored.
func (w *walker) collectUses(n *sitter.Node) {
	prefix := ""
	for i := range int(n.ChildCount()) {
		child := n.Child(i)
		switch child.Type() {
		case "function", "const":
			return
		case "namespace_name":
			// Group form: use Prefix\{A, B as C};
			prefix = strings.TrimPrefix(w.text(child), declaration.Separator)
		case "namespace_use_clause":
			w.useClause(child, "")
		case "namespace_use_group":
			for j := range int(child.NamedChildCount()) {
				w.useClause(child.NamedChild(j), prefix)
			}
		}
	}
}

func (w *walker) useClause(n *sitter.Node, prefix string) {
	var target, alias string
	for i := range int(n.NamedChildCount()) {
		child := n.NamedChild(i)
		switch {
		case child.Type() == "namespace_aliasing_clause":
			for j := range int(child.NamedChildCount()) {
				if c := child.NamedChild(j); c.Type() == "name" {
					alias = w.text(c)
				}
			}
		case isNameNode(child) && target == "":
			target = w.text(child)
		case child.Type() == "name":
			// Grammars that expose the alias as a plain trailing name.
			alias = w.text(child)
		}
	}
	if target == "" {
		return
	}

	target = strings.TrimPrefix(target, declaration.Separator)
	if prefix != "" {
		target = declaration.Join(prefix, target)
	}
	if alias == "" {
		alias = lastSegment(target)
	}

	if w.imports == nil {
		w.imports = make(map[string]string)
	}
	w.imports[strings.ToLower(alias)] = target
}

// resolve turns a name as written in source into its fully-qualified form
// without the leading separator, following PHP's class name rules.
func (w *walker) resolve(name, namespace string) string {
	if strings.HasPrefix(name, declaration.Separator) {
		return strings.TrimPrefix(name, declaration.Separator)
	}

	const relative = "namespace" + declaration.Separator
	if len(name) > len(relative) && strings.EqualFold(name[:len(relative)], relative) {
		return declaration.Join(namespace, name[len(relative):])
	}

	first, rest, qualified := strings.Cut(name, declaration.Separator)
	if target, ok := w.imports[strings.ToLower(first)]; ok {
		if qualified {
			return declaration.Join(target, rest)
		}
		return target
	}
	return declaration.Join(namespace, name)
}

func isNameNode(n *sitter.Node) bool {
	switch n.Type() {
	case "name", "qualified_name", "namespace_name", "relative_name":
		return true
	default:
		return false
	}
}

func lastSegment(fqn string) string {
	if i := strings.LastIndex(fqn, declaration.Separator); i >= 0 {
		return fqn[i+1:]
	}
	return fqn
}

// firstErrorLine returns the 1-based line of the first error or missing
// node in document order.
func firstErrorLine(root *sitter.Node) int {
	var find func(n *sitter.Node) *sitter.Node
	find = func(n *sitter.Node) *sitter.Node {
		if n.IsError() || n.IsMissing() {
			return n
		}
		if !n.HasError() {
			return nil
		}
		for i := range int(n.ChildCount()) {
			if found := find(n.Child(i)); found != nil {
				return found
			}
		}
		return nil
	}

	if n := find(root); n != nil {
		return int(n.StartPoint().Row) + 1
	}
	return int(root.StartPoint().Row) + 1
}
