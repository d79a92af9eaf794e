// Package kvcache implements a uniform caching layer over interchangeable
// key-value backends. One generic core carries the whole cache contract --
// existence checks, typed get/set, batch get with input dedup, regex bulk
// clear, dirty/clean tracking and an instance-set marker -- while each
// backend only supplies the minimal store.KeyStore primitives (get/put/remove
// plus optional capabilities such as key enumeration).
//
// Components:
//   - store.KeyStore: byte store (e.g. memory map, Redis, SQLite, BigCache).
//   - Codec[V]: (de)serializes V <-> []byte.
//   - namespace.Prefix: physical-key prefixing so multiple logical caches can
//     share one physical store.
//
// Bookkeeping rides the same key space as data, under reserved keys:
//
//	DIRTY_ITEMS         - framed list of keys currently marked dirty
//	IS_SET_PLACEHOLDER  - marker that the instance was initialized
//
// Absent is never an error: a missing key is a valid outcome of Get, Exists
// and Clear on every backend.
package kvcache
