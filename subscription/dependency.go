// Package subscription keeps open read queries in sync with the store.
// Each active query is registered against the dependency tuples it
// reads; every committed write reports the tuples it touched, and
// overlapping queries are recomputed and re-delivered to their sinks.
package subscription

// Dependency identifies a slice of the store: a single record or index
// range when Key is set, the whole collection when Key is empty.
type Dependency struct {
	Collection string
	Key        string
}

const (
	CollectionChannels = "channels"
	CollectionMessages = "messages"
)

// Channels covers the full channel collection (list queries).
func Channels() Dependency {
	return Dependency{Collection: CollectionChannels}
}

// Channel covers a single channel record (get queries).
func Channel(id string) Dependency {
	return Dependency{Collection: CollectionChannels, Key: id}
}

// Messages covers the per-channel message index (list queries).
func Messages(channelID string) Dependency {
	return Dependency{Collection: CollectionMessages, Key: channelID}
}
