package export

import (
	"encoding/json"
	"sort"

	"github.com/dmitrijs2005/procedurebuilder/internal/server/models"
)

// Node is one element in the flow graph.
type Node struct {
	Label string `json:"label"`
	Page  int    `json:"page"`
}

// Edge joins two nodes by index.
type Edge [2]int

// Graph is the procedure flow: elements in reading order, linear edges
// between consecutive elements and conditional edges from the first element
// of a page to every element its show-if rules depend on.
type Graph struct {
	Nodes            []Node `json:"nodes"`
	LinearEdges      []Edge `json:"linear_edges"`
	ConditionalEdges []Edge `json:"conditional_edges"`
}

// Condition is one node of a show-if condition tree.
type Condition struct {
	Type            string      `json:"type"`
	CriteriaElement int64       `json:"criteria_element"`
	Value           any         `json:"value,omitempty"`
	Children        []Condition `json:"children,omitempty"`
}

// ParseCondition decodes a stored show-if condition tree.
func ParseCondition(s string) (*Condition, error) {
	var c Condition
	if err := json.Unmarshal([]byte(s), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// CriteriaElements returns the positive criteria_element IDs found anywhere
// in the tree, in the order first seen.
func (c *Condition) CriteriaElements() []int64 {
	seen := map[int64]bool{}
	var out []int64
	var walk func(n *Condition)
	walk = func(n *Condition) {
		if n.CriteriaElement > 0 && !seen[n.CriteriaElement] {
			seen[n.CriteriaElement] = true
			out = append(out, n.CriteriaElement)
		}
		for i := range n.Children {
			walk(&n.Children[i])
		}
	}
	walk(c)
	return out
}

// BuildGraph computes the flow graph of a sorted snapshot. Conditions that
// are not valid JSON contribute no edges, and neither do references to
// elements outside the procedure.
func BuildGraph(tree *models.ProcedureTree) *Graph {
	g := &Graph{Nodes: []Node{}, LinearEdges: []Edge{}, ConditionalEdges: []Edge{}}

	pageStart := map[int]int{}
	byElement := map[int64]int{}
	for i, node := range tree.Pages {
		for j, e := range node.Elements {
			g.Nodes = append(g.Nodes, Node{Label: e.Question, Page: i})
			idx := len(g.Nodes) - 1
			byElement[e.ID] = idx
			if j == 0 {
				pageStart[i] = idx
			}
		}
	}

	for i := 1; i < len(g.Nodes); i++ {
		g.LinearEdges = append(g.LinearEdges, Edge{i - 1, i})
	}

	for i := 1; i < len(tree.Pages); i++ {
		start, ok := pageStart[i]
		if !ok {
			continue
		}
		for _, dep := range dependencies(tree.Pages[i]) {
			if target, ok := byElement[dep]; ok {
				g.ConditionalEdges = append(g.ConditionalEdges, Edge{start, target})
			}
		}
	}

	return g
}

func dependencies(node models.PageNode) []int64 {
	seen := map[int64]bool{}
	var out []int64
	for _, si := range node.ShowIfs {
		c, err := ParseCondition(si.Conditions)
		if err != nil {
			continue
		}
		for _, id := range c.CriteriaElements() {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}
