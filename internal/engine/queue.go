package engine

import "github.com/dicematch/server/internal/model"

// ConnectionID is the transport-assigned handle for one live connection.
// A player has at most one at a time; it changes on every reconnect.
type ConnectionID string

// queueEntry is one connection waiting for an opponent.
type queueEntry struct {
	Conn   ConnectionID
	Player model.PlayerID
}

// matchQueue is the FIFO pool of connections awaiting a match. Pairing
// always takes the two oldest entries. Not safe for concurrent use; the
// engine serializes access.
type matchQueue struct {
	entries []queueEntry
}

// enqueue appends an entry, or reports false if the connection is
// already waiting.
func (q *matchQueue) enqueue(conn ConnectionID, player model.PlayerID) bool {
	for _, e := range q.entries {
		if e.Conn == conn {
			return false
		}
	}
	q.entries = append(q.entries, queueEntry{Conn: conn, Player: player})
	return true
}

// tryPair removes and returns the two oldest entries, in arrival order.
// It reports false if fewer than two connections are waiting.
func (q *matchQueue) tryPair() (queueEntry, queueEntry, bool) {
	if len(q.entries) < 2 {
		return queueEntry{}, queueEntry{}, false
	}
	first, second := q.entries[0], q.entries[1]
	q.entries = q.entries[2:]
	return first, second, true
}

// size returns the number of waiting entries.
func (q *matchQueue) size() int {
	return len(q.entries)
}
