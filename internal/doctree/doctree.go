package doctree

// Document is the root of a parsed source document, as supplied by the
// document collaborator. The core treats it as read-only.
type Document struct {
	Title    string  // Document title (from metadata or filename)
	Children []*Node // Top-level sections
}

// Node is a recursive section in the document tree.
type Node struct {
	Title    string  // Section heading (empty for leaf text)
	Text     string  // Text content of this node (may be empty for container nodes)
	Images   []Image // Inline images belonging to this node, in document order
	Page     int     // Source page/line (0 if N/A)
	Children []*Node // Subsections
}

// Image is an inline document image with its alt text.
type Image struct {
	Alt string
	URL string
}

// TextLen returns the text length of the node and all its descendants.
func (n *Node) TextLen() int {
	total := len(n.Text)
	for _, c := range n.Children {
		total += c.TextLen()
	}
	return total
}

// ImageCount returns the number of images in the node and its descendants.
func (n *Node) ImageCount() int {
	total := len(n.Images)
	for _, c := range n.Children {
		total += c.ImageCount()
	}
	return total
}
