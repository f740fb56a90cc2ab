package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// statusProbeTimeout bounds the connectivity probe; past it the admin surface
// reports offline instead of hanging.
const statusProbeTimeout = 5 * time.Second

// StatusService answers "is the store reachable right now", gating
// session-creation and list-management UI.
type StatusService struct {
	client *mongo.Client
}

// NewStatusService creates a new status service
func NewStatusService(client *mongo.Client) *StatusService {
	return &StatusService{client: client}
}

// Online pings the store with a bounded timeout.
func (s *StatusService) Online(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, statusProbeTimeout)
	defer cancel()
	return s.client.Ping(probeCtx, nil) == nil
}
