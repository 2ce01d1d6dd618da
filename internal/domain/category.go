package domain

// Category is a node of the catalog tree. ParentID is empty for roots.
// Leaves have no children, so descendant walks stop at them.
// The catalog owns its lifecycle; this service only reads it.
type Category struct {
	ID       string
	ParentID string
	IsLeaf   bool
}
