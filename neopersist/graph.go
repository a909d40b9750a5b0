package neopersist

// GraphNode is a node as returned by FindGraph, independent of any entity type.
type GraphNode struct {
	// ID is the node's ElementId, stable for the lifetime of the node.
	ID         string                 `json:"id"`
	Labels     []string               `json:"labels"`
	Properties map[string]interface{} `json:"properties"`
}

// Edge is a relationship as returned by FindGraph. Source and Target hold the
// ElementIds of its start and end nodes, so edges can be joined to Nodes.
type Edge struct {
	ID         string                 `json:"id"`
	Source     string                 `json:"source"`
	Target     string                 `json:"target"`
	Type       string                 `json:"type"` // e.g. FRIENDS_WITH
	Properties map[string]interface{} `json:"properties"`
}

// GraphResult is a de-duplicated set of nodes and edges, the shape graph
// visualization front ends expect.
type GraphResult struct {
	Nodes []*GraphNode `json:"nodes"`
	Edges []*Edge      `json:"edges"`
}

// NodeByID returns the node with the given ElementId, or nil.
func (g *GraphResult) NodeByID(id string) *GraphNode {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// EdgesOfType returns the edges whose relationship type is relType.
func (g *GraphResult) EdgesOfType(relType string) []*Edge {
	out := make([]*Edge, 0)
	for _, e := range g.Edges {
		if e.Type == relType {
			out = append(out, e)
		}
	}
	return out
}
