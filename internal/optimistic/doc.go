// Package optimistic holds the client-side mutation layer shared by every list
// in the app.
//
// A list applies a predicted change to its in-memory records before the server
// answers, blocks a second mutation of the same entity while the first is in
// flight, and only lets the most recently issued mutation for an entity affect
// state once its response arrives. When a mutation settles, the list schedules
// a full re-fetch that replaces whatever optimistic residue is left.
//
// The pieces are:
//
//   - Guard: per-entity pending set and sequence counter.
//   - Store: the records plus apply / rollback / remove / restore.
//   - Effect: a change paired with its undo.
//   - Dispatcher: runs one action through begin, call and settle.
//   - Settler: coalesces reconciliation fetches and keeps them out of the way
//     of in-flight mutations.
//   - List: one of each, wired together.
//
// Nothing here blocks except Pending.Run and Settler.Flush, so an event loop
// (the dashboard's bubbletea Update) can run Begin and Settle inline and push
// Run into a command.
package optimistic
