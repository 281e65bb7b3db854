// Package comments assembles flat comment lists into reply trees.
package comments

import "agora/internal/models"

// BuildTree turns a flat, ordered comment list into a forest. Roots and each
// node's replies keep input order. A comment is a root when its parent is
// unset, refers to itself, or is missing from the input. Comments that
// already carry replies are flattened first (a nested reply without a parent
// id takes the id of the comment it is nested under), duplicate ids keep
// their first occurrence, and comments caught in a parent cycle are promoted
// to roots.
//
// The input is never modified; every node in the result is a copy.
func BuildTree(flat []*models.Comment) []*models.Comment {
	nodes := make([]*models.Comment, 0, len(flat))
	byID := make(map[int64]*models.Comment, len(flat))

	visited := make(map[*models.Comment]bool, len(flat))
	var collect func(list []*models.Comment, parent *int64)
	collect = func(list []*models.Comment, parent *int64) {
		for _, c := range list {
			if c == nil || visited[c] {
				continue
			}
			visited[c] = true
			if _, seen := byID[c.ID]; !seen {
				n := copyNode(c)
				if n.ParentID == nil && parent != nil {
					pid := *parent
					n.ParentID = &pid
				}
				byID[n.ID] = n
				nodes = append(nodes, n)
			}
			id := c.ID
			collect(c.Replies, &id)
		}
	}
	collect(flat, nil)

	parentOf := make(map[int64]*models.Comment, len(nodes))
	for _, n := range nodes {
		if n.ParentID == nil || *n.ParentID == n.ID {
			continue
		}
		if p, ok := byID[*n.ParentID]; ok {
			parentOf[n.ID] = p
			p.Replies = append(p.Replies, n)
		}
	}

	reached := make(map[int64]bool, len(nodes))
	var mark func(*models.Comment)
	mark = func(n *models.Comment) {
		if reached[n.ID] {
			return
		}
		reached[n.ID] = true
		for _, r := range n.Replies {
			mark(r)
		}
	}

	isRoot := make(map[int64]bool, len(nodes))
	for _, n := range nodes {
		if _, hasParent := parentOf[n.ID]; !hasParent {
			isRoot[n.ID] = true
			mark(n)
		}
	}

	// Whatever is still unreached hangs off a cycle. Promoting the first
	// member in input order breaks that cycle.
	for _, n := range nodes {
		if reached[n.ID] {
			continue
		}
		detach(parentOf[n.ID], n)
		delete(parentOf, n.ID)
		isRoot[n.ID] = true
		mark(n)
	}

	roots := make([]*models.Comment, 0, len(isRoot))
	for _, n := range nodes {
		if isRoot[n.ID] {
			roots = append(roots, n)
		}
	}
	return roots
}

// Flatten returns every node of forest depth-first, parents before replies.
func Flatten(forest []*models.Comment) []*models.Comment {
	var out []*models.Comment
	var walk func([]*models.Comment)
	walk = func(list []*models.Comment) {
		for _, c := range list {
			out = append(out, c)
			walk(c.Replies)
		}
	}
	walk(forest)
	return out
}

// Count returns the number of nodes in forest.
func Count(forest []*models.Comment) int {
	n := 0
	for _, c := range forest {
		n += 1 + Count(c.Replies)
	}
	return n
}

// Depth returns the number of levels in forest; an empty forest has depth 0.
func Depth(forest []*models.Comment) int {
	deepest := 0
	for _, c := range forest {
		if d := 1 + Depth(c.Replies); d > deepest {
			deepest = d
		}
	}
	return deepest
}

func copyNode(c *models.Comment) *models.Comment {
	n := *c
	n.Replies = nil
	if c.ParentID != nil {
		pid := *c.ParentID
		n.ParentID = &pid
	}
	return &n
}

func detach(parent, child *models.Comment) {
	if parent == nil {
		return
	}
	for i, r := range parent.Replies {
		if r == child {
			parent.Replies = append(parent.Replies[:i:i], parent.Replies[i+1:]...)
			return
		}
	}
}
