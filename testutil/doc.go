// Package testutil provides seeded random dataset generators shared by
// tests and benchmarks.
package testutil
