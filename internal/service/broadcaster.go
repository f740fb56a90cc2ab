package service

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToDashboard(sessionID string, msgType string, payload interface{})
	BroadcastToTeam(sessionID, teamID string, msgType string, payload interface{})
}
