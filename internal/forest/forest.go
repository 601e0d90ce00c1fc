package forest

import "sort"

// Forest is the arena of all nodes for one subreddit, plus the root set.
type Forest struct {
	nodes map[string]*Node
}

// New returns an empty forest.
func New() *Forest {
	return &Forest{nodes: make(map[string]*Node)}
}

// Get returns the node for id, or nil.
func (f *Forest) Get(id string) *Node { return f.nodes[id] }

// Len returns the number of nodes in the arena, pruned ones included.
func (f *Forest) Len() int { return len(f.nodes) }

// Roots returns the ids of all live roots in creation order.
func (f *Forest) Roots() []string {
	var roots []*Node
	for _, n := range f.nodes {
		if n.Parent == "" && !n.Pruned {
			roots = append(roots, n)
		}
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].Seq < roots[j].Seq })

	ids := make([]string, len(roots))
	for i, n := range roots {
		ids[i] = n.ID()
	}
	return ids
}

// Walk visits every live node in pre-order depth-first order, trees in root
// creation order. fn returning an error stops the walk.
func (f *Forest) Walk(fn func(*Node) error) error {
	for _, rootID := range f.Roots() {
		stack := []string{rootID}
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			n := f.nodes[id]
			if err := fn(n); err != nil {
				return err
			}
			for i := len(n.Children) - 1; i >= 0; i-- {
				stack = append(stack, n.Children[i])
			}
		}
	}
	return nil
}

// Prune removes n from its tree while keeping its descendants reachable:
// the children are spliced into the parent's child list at n's position,
// and n is marked pruned. A pruned root's children become new roots.
// This is the single tree-surgery primitive shared by dedup and filtering.
func (f *Forest) Prune(n *Node) {
	if n.Pruned {
		return
	}

	if n.Parent == "" {
		for _, childID := range n.Children {
			f.nodes[childID].Parent = ""
		}
	} else {
		parent := f.nodes[n.Parent]
		spliced := make([]string, 0, len(parent.Children)+len(n.Children)-1)
		for _, id := range parent.Children {
			if id == n.ID() {
				spliced = append(spliced, n.Children...)
				continue
			}
			spliced = append(spliced, id)
		}
		parent.Children = spliced
		for _, childID := range n.Children {
			f.nodes[childID].Parent = n.Parent
		}
	}

	n.Children = nil
	n.Parent = ""
	n.Pruned = true
}

// isAncestor reports whether candidate is id itself or one of id's
// ancestors. The walk is bounded by tree depth.
func (f *Forest) isAncestor(candidate, id string) bool {
	for cur := id; cur != ""; {
		if cur == candidate {
			return true
		}
		n := f.nodes[cur]
		if n == nil {
			return false
		}
		cur = n.Parent
	}
	return false
}
