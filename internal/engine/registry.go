package engine

import "github.com/dicematch/server/internal/model"

// identityRegistry maps durable player ids to their current transient
// connection handle and back. The two maps are kept mutually consistent.
// Not safe for concurrent use; the engine serializes access.
type identityRegistry struct {
	handles map[model.PlayerID]ConnectionID
	players map[ConnectionID]model.PlayerID
}

func newIdentityRegistry() *identityRegistry {
	return &identityRegistry{
		handles: make(map[model.PlayerID]ConnectionID),
		players: make(map[ConnectionID]model.PlayerID),
	}
}

// bind records the mapping both ways. A prior handle for the same player
// is dropped: last bind wins.
func (r *identityRegistry) bind(player model.PlayerID, conn ConnectionID) {
	if old, ok := r.handles[player]; ok {
		delete(r.players, old)
	}
	r.handles[player] = conn
	r.players[conn] = player
}

// unbind removes both directions. Idempotent.
func (r *identityRegistry) unbind(player model.PlayerID) {
	if conn, ok := r.handles[player]; ok {
		delete(r.players, conn)
	}
	delete(r.handles, player)
}

// resolveHandles returns the connection handles for the given player ids,
// silently omitting players with no current handle. Callers must tolerate
// a shorter result when a player has disconnected.
func (r *identityRegistry) resolveHandles(players []model.PlayerID) []ConnectionID {
	conns := make([]ConnectionID, 0, len(players))
	for _, id := range players {
		if conn, ok := r.handles[id]; ok {
			conns = append(conns, conn)
		}
	}
	return conns
}

// playerFor returns the player bound to the given connection.
func (r *identityRegistry) playerFor(conn ConnectionID) (model.PlayerID, bool) {
	id, ok := r.players[conn]
	return id, ok
}
