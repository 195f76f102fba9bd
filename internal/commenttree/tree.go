// Package commenttree assembles the flat comment rows of one problem into
// the nested thread shown under it.
package commenttree

import (
	"slices"

	"github.com/sakif/problemspark/internal/model"
)

// Node is a comment together with its replies.
//
// The comment is embedded, so its fields sit at the top level of the JSON
// object next to "replies":
//
//	{"id":"...","content":"...","replies":[{...}]}
type Node struct {
	model.Comment
	Replies []Node `json:"replies"`
}

// Build nests comments by ParentID.
//
// Top-level comments come back newest first. Replies keep the order they
// had in the input. A reply whose parent is missing from comments is
// dropped, along with any replies underneath it. Nesting depth is
// unbounded.
func Build(comments []model.Comment) []Node {
	var roots []model.Comment
	children := make(map[string][]model.Comment)

	for _, c := range comments {
		if c.ParentID == nil {
			roots = append(roots, c)
			continue
		}
		children[*c.ParentID] = append(children[*c.ParentID], c)
	}

	slices.SortStableFunc(roots, func(a, b model.Comment) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	nodes := make([]Node, 0, len(roots))
	for _, r := range roots {
		nodes = append(nodes, attach(r, children))
	}
	return nodes
}

// attach builds the subtree under c. Every comment has a single parent, so
// walking down from a root can never revisit a node.
func attach(c model.Comment, children map[string][]model.Comment) Node {
	replies := children[c.ID]
	n := Node{
		Comment: c,
		Replies: make([]Node, 0, len(replies)),
	}
	for _, r := range replies {
		n.Replies = append(n.Replies, attach(r, children))
	}
	return n
}

// Count returns the number of comments in the forest, replies included.
func Count(nodes []Node) int {
	total := 0
	for _, n := range nodes {
		total += 1 + Count(n.Replies)
	}
	return total
}

// Depth returns the number of levels in the forest; 0 for an empty forest.
func Depth(nodes []Node) int {
	deepest := 0
	for _, n := range nodes {
		if d := 1 + Depth(n.Replies); d > deepest {
			deepest = d
		}
	}
	return deepest
}
