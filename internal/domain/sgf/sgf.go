package sgf

// GameTree is one SGF tree: the main line plus variations.
type GameTree struct {
	Nodes    []Node
	Children []*GameTree
}

// Node holds SGF properties; a property may repeat (AB[aa][bb]).
type Node struct {
	Properties map[string][]string
}

func NewNode() Node {
	return Node{Properties: make(map[string][]string)}
}

func (n Node) Add(key string, values ...string) {
	n.Properties[key] = append(n.Properties[key], values...)
}

type SGF struct {
	Root *GameTree
}
