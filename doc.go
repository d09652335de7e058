// Package dualtree implements exact k-nearest and k-furthest neighbor
// search over point sets using dual-tree (and single-tree) branch-and-
// bound traversal of spatial trees.
//
// Unlike approximate vector indexes, results are mathematically exact:
// the candidate sets returned are identical to a brute-force all-pairs
// scan, with sub-quadratic runtime on structured data. Two tree variants
// are provided, a kd-tree with axis-aligned bounds and a cover tree with
// representative points, both consumed through one node contract.
//
// Basic usage:
//
//	refs, _ := matrix.FromColumns(points)
//	s, _ := dualtree.NewSearcher(refs)
//	res, _ := s.Search(ctx, queries, 10)
//	_ = res.Neighbors[0] // reference ids of query 0's 10 nearest
//
// Built trees can be persisted with the snapshot package and any
// store.Store backend, and reloaded with FromTree.
package dualtree
