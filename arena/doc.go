// Package arena provides scoped memory for staging native call arguments.
//
// An Arena owns every buffer allocated for one logical operation: a single
// native call, or a short sequence of related calls such as a status check
// followed by an error-string lookup. Buffers are pinned Go memory, so their
// addresses are stable while the arena is open, and everything is released
// together when it closes:
//
//	rank, err := arena.Do(func(a *arena.Arena) (int32, error) {
//	    cell := a.AllocInt32()
//	    if st := commRank(comm, cell.Ptr()); st != 0 {
//	        return 0, translate(st)
//	    }
//	    return cell.Int32(), nil
//	})
//
// # Typed Marshaling
//
// Values are written and read in native byte order through typed helpers
// (WriteInt32, WriteFloat64s, WriteCString, WriteCStrings and the matching
// Buffer readers) rather than raw byte manipulation. Empty sequences marshal
// to the null buffer, never to a zero-length allocation.
//
// Arenas are not safe for concurrent use and must never outlive the
// operation that created them.
package arena
