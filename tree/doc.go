// Package tree provides the spatial trees consumed by neighbor search:
// a kd-tree with axis-aligned bounds and a cover tree with representative
// points and self-children. Both expose the same node contract: owned
// points, children, an optional parent, a furthest-descendant distance,
// and a mutable per-node Stat block for the pruning rules.
package tree
