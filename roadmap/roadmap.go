// contains the roadmap data structures and the pure transformations that
// derive trees and topic menus from a flat index dataset
package roadmap

const (
	// PathSeparator separates labels in an index entry text
	PathSeparator = " > "
	// KeySeparator joins a name slug and a node id into a composite key
	KeySeparator = "@"
	// DefaultRootLabel root of the cyber security roadmap
	DefaultRootLabel = "Cyber Security"
	// Indent for tree dumps
	Indent = "\t"
)

// Key composite key of a roadmap node as used by the upstream content service
func Key(nameSlug, nodeID string) string {
	return nameSlug + KeySeparator + nodeID
}
