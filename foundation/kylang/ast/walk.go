// File: walk.go
// Title: AST Traversal
// Description: Depth-first traversal of kylang syntax trees.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Inspect and Children

package ast

// Children returns the direct children of node in source order
func Children(node Node) []Node {
	switch n := node.(type) {
	case *Program:
		out := make([]Node, len(n.Stmts))
		for i, s := range n.Stmts {
			out[i] = s
		}
		return out
	case *IntLit, *Ident:
		return nil
	case *Neg:
		return []Node{n.X}
	case *Paren:
		return []Node{n.X}
	case *Binary:
		return []Node{n.Left, n.Right}
	case *Compare:
		return []Node{n.Left, n.Right}
	case *Assign:
		return []Node{n.Value}
	case *Display:
		return []Node{n.Value}
	case *Input:
		return nil
	case *If:
		out := []Node{n.Cond, n.Then}
		for _, e := range n.Elifs {
			out = append(out, e.Cond, e.Body)
		}
		if n.Else != nil {
			out = append(out, n.Else)
		}
		return out
	case *While:
		return []Node{n.Cond, n.Body}
	case *For:
		return []Node{n.From, n.To, n.Body}
	case *Block:
		out := make([]Node, len(n.Stmts))
		for i, s := range n.Stmts {
			out[i] = s
		}
		return out
	default:
		return nil
	}
}

// Inspect traverses the tree rooted at node in depth-first order, calling
// f for each node. Children are skipped when f returns false.
func Inspect(node Node, f func(Node) bool) {
	if node == nil || !f(node) {
		return
	}
	for _, child := range Children(node) {
		Inspect(child, f)
	}
}

// Identifiers returns the distinct variable names (lowercased) referenced
// or assigned anywhere in the tree, in first-seen order.
func Identifiers(node Node) []string {
	seen := make(map[string]bool)
	var names []string
	add := func(name string) {
		key := foldName(name)
		if !seen[key] {
			seen[key] = true
			names = append(names, key)
		}
	}
	Inspect(node, func(n Node) bool {
		switch v := n.(type) {
		case *Ident:
			add(v.Name)
		case *Assign:
			add(v.Name)
		case *Input:
			add(v.Name)
		case *For:
			add(v.Var)
		}
		return true
	})
	return names
}
