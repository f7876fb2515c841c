// Package notes defines the note record, its status machine, and the Store
// contract shared by the SQLite and PostgreSQL backends.
//
// A note moves raw -> transcribed -> extracted -> done, or from any
// non-terminal status to failed. Stage workers claim a note with a lease
// token, process it, and commit the next status together with the fields
// their stage owns in a single conditional update. The store is the only
// channel between stages.
package notes
