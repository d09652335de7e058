// Package bound implements the bounding-volume geometry behind score
// pruning: lower and upper bounds on point-to-node and node-to-node
// distances. Axis-aligned bounds back kd-tree nodes; cover-tree nodes use
// their representative point plus radius and need no explicit volume.
package bound
