package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/yungbote/vitality-backend/internal/db"
	"github.com/yungbote/vitality-backend/internal/pkg/logger"
)

// Store keeps the user/video interaction graph in neo4j. Every method is a
// no-op (or empty result) when the graph client was not configured, so the
// rest of the app degrades instead of failing.
type Store struct {
	client *db.Neo4jClient
	log    *logger.Logger
}

func NewStore(client *db.Neo4jClient, log *logger.Logger) *Store {
	return &Store{client: client, log: log.With("store", "InteractionGraph")}
}

func (s *Store) Enabled() bool {
	return s != nil && s.client != nil && s.client.Driver != nil
}

// EnsureSchema creates the uniqueness constraints the walk queries rely on.
// Failures are logged and swallowed: constraint creation needs admin rights
// on some deployments.
func (s *Store) EnsureSchema(ctx context.Context) {
	if !s.Enabled() {
		return
	}
	session := s.client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: s.client.Database,
	})
	defer session.Close(ctx)

	stmts := []string{
		`CREATE CONSTRAINT user_id_unique IF NOT EXISTS FOR (u:User) REQUIRE u.id IS UNIQUE`,
		`CREATE CONSTRAINT video_id_unique IF NOT EXISTS FOR (v:Video) REQUIRE v.id IS UNIQUE`,
	}
	for _, q := range stmts {
		if res, err := session.Run(ctx, q, nil); err != nil {
			s.log.Warn("graph schema init failed (continuing)", "error", err)
		} else {
			_, _ = res.Consume(ctx)
		}
	}
}

// RecordInteraction upserts the (user)-[:INTERACTED]->(video) edge, adding
// score to the running total and stamping the interaction time.
func (s *Store) RecordInteraction(ctx context.Context, userID, videoID uuid.UUID, kind string, score float64) error {
	if !s.Enabled() {
		return nil
	}
	if userID == uuid.Nil || videoID == uuid.Nil {
		return fmt.Errorf("graph: missing user or video id")
	}

	session := s.client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: s.client.Database,
	})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MERGE (u:User {id: $user_id})
MERGE (v:Video {id: $video_id})
MERGE (u)-[r:INTERACTED]->(v)
ON CREATE SET r.score = $score, r.count = 1
ON MATCH SET r.score = coalesce(r.score, 0) + $score, r.count = coalesce(r.count, 0) + 1
SET r.last_kind = $kind, r.last_interaction = $at
`, map[string]any{
			"user_id":  userID.String(),
			"video_id": videoID.String(),
			"kind":     kind,
			"score":    score,
			"at":       time.Now().UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			return nil, err
		}
		_, err = res.Consume(ctx)
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("graph: record interaction: %w", err)
	}
	return nil
}

// RecentVideoIDs returns the user's videos ordered by most recent
// interaction, newest first.
func (s *Store) RecentVideoIDs(ctx context.Context, userID uuid.UUID, limit int) ([]uuid.UUID, error) {
	if !s.Enabled() {
		return nil, nil
	}
	if userID == uuid.Nil {
		return nil, fmt.Errorf("graph: missing user id")
	}
	if limit <= 0 {
		limit = 10
	}

	session := s.client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: s.client.Database,
	})
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (u:User {id: $user_id})-[r:INTERACTED]->(v:Video)
RETURN v.id AS id
ORDER BY r.last_interaction DESC
LIMIT $limit
`, map[string]any{
			"user_id": userID.String(),
			"limit":   limit,
		})
		if err != nil {
			return nil, err
		}
		return collectIDs(ctx, res)
	})
	if err != nil {
		return nil, fmt.Errorf("graph: recent videos: %w", err)
	}
	return out.([]uuid.UUID), nil
}

// NeighborVideoIDs walks the collaborative neighborhood: the user's top
// interacted videos, the co-interacting users ranked by summed edge score
// (the user excluded), then those neighbors' top videos. Results are
// deduplicated, the user's own already-seen videos filtered out, and the
// list capped at limit.
func (s *Store) NeighborVideoIDs(ctx context.Context, userID uuid.UUID, limit int) ([]uuid.UUID, error) {
	if !s.Enabled() {
		return nil, nil
	}
	if userID == uuid.Nil {
		return nil, fmt.Errorf("graph: missing user id")
	}
	if limit <= 0 {
		limit = 10
	}

	session := s.client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: s.client.Database,
	})
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (me:User {id: $user_id})-[r:INTERACTED]->(v:Video)
WITH me, v ORDER BY r.score DESC LIMIT 100
MATCH (other:User)-[r2:INTERACTED]->(v)
WHERE other.id <> me.id
WITH me, other, sum(r2.score) AS overlap
ORDER BY overlap DESC LIMIT 5
MATCH (other)-[r3:INTERACTED]->(rec:Video)
WHERE NOT (me)-[:INTERACTED]->(rec)
WITH rec, max(r3.score) AS best
ORDER BY best DESC
RETURN DISTINCT rec.id AS id
LIMIT $limit
`, map[string]any{
			"user_id": userID.String(),
			"limit":   limit,
		})
		if err != nil {
			return nil, err
		}
		return collectIDs(ctx, res)
	})
	if err != nil {
		return nil, fmt.Errorf("graph: neighbor videos: %w", err)
	}
	return out.([]uuid.UUID), nil
}

func collectIDs(ctx context.Context, res neo4j.ResultWithContext) ([]uuid.UUID, error) {
	records, err := res.Collect(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(records))
	for _, rec := range records {
		raw, ok := rec.Get("id")
		if !ok {
			continue
		}
		str, ok := raw.(string)
		if !ok {
			continue
		}
		id, err := uuid.Parse(str)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
