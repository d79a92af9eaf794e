// Package scope provides stores bound to an explicit execution scope: a
// request, a session, or the whole process. The hosting layer creates the
// Scope, hands it to whoever builds caches for that lifetime, and flushes it
// at teardown. Passing the Scope in -- rather than reading ambient
// runtime state -- keeps caches testable without a hosting runtime.
package scope

import (
	"github.com/unkn0wn-root/kvcache/store"
	"github.com/unkn0wn-root/kvcache/store/memory"
)

// Scope is a caller-owned bag of cached entries with a single lifetime.
// Every store obtained from the same Scope shares its entries, so two caches
// built over one Scope see each other's keys (namespace them if that is not
// wanted).
type Scope struct {
	entries *memory.Store
}

func New() *Scope {
	return &Scope{entries: memory.New()}
}

// Store adapts the scope to a store.KeyStore. Closing the returned store does
// not end the scope; call Flush for that.
func (s *Scope) Store() store.KeyStore {
	return s.entries
}

// Flush empties the scope. Call at the end of the request/session the scope
// was created for.
func (s *Scope) Flush() {
	s.entries.Flush()
}

// Len reports how many entries the scope currently holds.
func (s *Scope) Len() int {
	return s.entries.Len()
}
