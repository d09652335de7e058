// Package neighbor implements the exact k-nearest (and k-furthest)
// neighbor pruning rules: the base-case evaluator with one-slot
// memoization, the point-to-node and node-to-node score/prune decisions,
// the five-way bound update that lets a query node inherit tightening
// from points, children, and ancestors, and the bounded sorted candidate
// lists the results accumulate into.
//
// The package holds no traversal logic of its own; a driver from the
// traverse package (or any other driver honoring the same contract)
// decides visitation order and calls BaseCase, Score, and Rescore.
package neighbor
