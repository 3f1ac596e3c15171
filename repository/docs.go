// Package repository keeps ordered record sets of one entity each in a named slot of a Store.
//
// A SlotRepository owns exactly one slot. Every call reads the complete set from the Store,
// and every mutation writes the complete set back. There is no partial write.
// On the first read of an empty slot, the repository seeds it with a default set.
//
// Stores only move opaque blobs around, the Codec decides on the document format.
// Memory, file, SQLite, PostgreSQL, and S3 stores are available,
// all of them pass the same TestStoreSuite.
//
// The read-modify-write of a full set is O(n) for every call and intended for small
// administrative collections. Within a process a repository serialises its calls,
// across processes the last writer wins.
package repository
