// Package listeners holds the listener bookkeeping shared by all filter
// indices: handle assignment, the listener->filter side table and
// roaring-bitmap posting lists from index keys to listener handles.
package listeners
