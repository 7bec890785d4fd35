//go:build !debug

package alloc

// assertFree is a no-op in production.
// Enable with -tags debug for runtime checks.
func (a *Allocator) assertFree(string, Ptr) {}
