// File: format.go
// Title: AST Output
// Description: Renders syntax trees as canonical source, as an indented
//              tree dump and as generic maps for JSON/YAML encoders.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Format, Dump and ToMap

package ast

import (
	"fmt"
	"strings"
)

// Format renders p as source text using one tab per block level. Parsing
// the result yields an equivalent program.
func Format(p *Program) string {
	var b strings.Builder
	for _, s := range p.Stmts {
		formatStmt(&b, s, 0)
	}
	return b.String()
}

func formatStmt(b *strings.Builder, s Stmt, depth int) {
	indent := strings.Repeat("\t", depth)
	switch n := s.(type) {
	case *If:
		b.WriteString(indent + n.String() + "\n")
		formatBlock(b, n.Then, depth+1)
		for _, e := range n.Elifs {
			b.WriteString(indent + "elif " + e.Cond.String() + ":\n")
			formatBlock(b, e.Body, depth+1)
		}
		if n.Else != nil {
			b.WriteString(indent + "else:\n")
			formatBlock(b, n.Else, depth+1)
		}
	case *While:
		b.WriteString(indent + n.String() + "\n")
		formatBlock(b, n.Body, depth+1)
	case *For:
		b.WriteString(indent + n.String() + "\n")
		formatBlock(b, n.Body, depth+1)
	case *Block:
		formatBlock(b, n, depth)
	default:
		b.WriteString(indent + s.String() + "\n")
	}
}

func formatBlock(b *strings.Builder, blk *Block, depth int) {
	if blk == nil {
		return
	}
	for _, s := range blk.Stmts {
		formatStmt(b, s, depth)
	}
}

// Dump returns an indented tree view of node, one node per line
func Dump(node Node) string {
	var b strings.Builder
	dump(&b, node, 0)
	return b.String()
}

func dump(b *strings.Builder, node Node, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(label(node))
	b.WriteByte('\n')

	// If branches are labelled so elif/else boundaries stay visible
	if n, ok := node.(*If); ok {
		dump(b, n.Cond, depth+1)
		dumpBranch(b, "then", n.Then, depth+1)
		for _, e := range n.Elifs {
			b.WriteString(strings.Repeat("  ", depth+1) + "elif @" + e.Pos.String() + "\n")
			dump(b, e.Cond, depth+2)
			dumpBranch(b, "then", e.Body, depth+2)
		}
		if n.Else != nil {
			dumpBranch(b, "else", n.Else, depth+1)
		}
		return
	}
	for _, child := range Children(node) {
		dump(b, child, depth+1)
	}
}

func dumpBranch(b *strings.Builder, name string, blk *Block, depth int) {
	b.WriteString(strings.Repeat("  ", depth) + name + "\n")
	for _, s := range blk.Stmts {
		dump(b, s, depth+1)
	}
}

func label(node Node) string {
	pos := "@" + node.Position().String()
	switch n := node.(type) {
	case *Program:
		return "Program"
	case *IntLit:
		return fmt.Sprintf("IntLit %d %s", n.Value, pos)
	case *Ident:
		return fmt.Sprintf("Ident %s %s", n.Name, pos)
	case *Neg:
		return "Neg " + pos
	case *Paren:
		return "Paren " + pos
	case *Binary:
		return fmt.Sprintf("Binary %s %s", n.Op, pos)
	case *Compare:
		return fmt.Sprintf("Compare %s %s", n.Op, pos)
	case *Assign:
		return fmt.Sprintf("Assign %s %s", n.Name, pos)
	case *Display:
		return "Display " + pos
	case *Input:
		return fmt.Sprintf("Input %s %s", n.Name, pos)
	case *If:
		return "If " + pos
	case *While:
		return "While " + pos
	case *For:
		return fmt.Sprintf("For %s %s", n.Var, pos)
	case *Block:
		return "Block " + pos
	default:
		return fmt.Sprintf("%T", node)
	}
}

// ToMap converts node into nested maps and slices suitable for JSON or YAML
// encoding
func ToMap(node Node) map[string]interface{} {
	m := map[string]interface{}{"pos": node.Position().String()}
	switch n := node.(type) {
	case *Program:
		m["type"] = "Program"
		m["body"] = stmtList(n.Stmts)
		delete(m, "pos")
	case *IntLit:
		m["type"] = "IntLit"
		m["value"] = n.Value
	case *Ident:
		m["type"] = "Ident"
		m["name"] = n.Name
	case *Neg:
		m["type"] = "Neg"
		m["operand"] = ToMap(n.X)
	case *Paren:
		m["type"] = "Paren"
		m["inner"] = ToMap(n.X)
	case *Binary:
		m["type"] = "Binary"
		m["op"] = n.Op.String()
		m["left"] = ToMap(n.Left)
		m["right"] = ToMap(n.Right)
	case *Compare:
		m["type"] = "Compare"
		m["op"] = n.Op.String()
		m["left"] = ToMap(n.Left)
		m["right"] = ToMap(n.Right)
	case *Assign:
		m["type"] = "Assign"
		m["name"] = n.Name
		m["value"] = ToMap(n.Value)
	case *Display:
		m["type"] = "Display"
		m["value"] = ToMap(n.Value)
	case *Input:
		m["type"] = "Input"
		m["name"] = n.Name
	case *If:
		m["type"] = "If"
		m["cond"] = ToMap(n.Cond)
		m["then"] = stmtList(n.Then.Stmts)
		if len(n.Elifs) > 0 {
			elifs := make([]interface{}, len(n.Elifs))
			for i, e := range n.Elifs {
				elifs[i] = map[string]interface{}{
					"pos":  e.Pos.String(),
					"cond": ToMap(e.Cond),
					"body": stmtList(e.Body.Stmts),
				}
			}
			m["elifs"] = elifs
		}
		if n.Else != nil {
			m["else"] = stmtList(n.Else.Stmts)
		}
	case *While:
		m["type"] = "While"
		m["cond"] = ToMap(n.Cond)
		m["body"] = stmtList(n.Body.Stmts)
	case *For:
		m["type"] = "For"
		m["var"] = n.Var
		m["from"] = ToMap(n.From)
		m["to"] = ToMap(n.To)
		m["body"] = stmtList(n.Body.Stmts)
	case *Block:
		m["type"] = "Block"
		m["body"] = stmtList(n.Stmts)
	}
	return m
}

func stmtList(stmts []Stmt) []interface{} {
	out := make([]interface{}, len(stmts))
	for i, s := range stmts {
		out[i] = ToMap(s)
	}
	return out
}

func foldName(name string) string {
	return strings.ToLower(name)
}
