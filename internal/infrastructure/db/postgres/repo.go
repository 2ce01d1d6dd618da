package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/baechuer/tracking-service/internal/domain"
)

// Repo is the Postgres-backed event log.
type Repo struct {
	db *sql.DB
}

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func unavailable(op string, err error) error {
	return domain.ErrUnavailable("tracking store: "+op, err)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (r *Repo) Append(ctx context.Context, e *domain.Event) error {
	meta := e.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	md, err := json.Marshal(meta)
	if err != nil {
		return domain.ErrValidationMeta("invalid event", map[string]string{"metadata": "must be JSON encodable"})
	}
	_, err = r.db.ExecContext(ctx, insertEventSQL,
		e.ID, e.ActorID, nullString(e.SessionID), e.ProductID, nullString(e.CategoryID),
		string(e.Action), string(md), e.CreatedAt,
	)
	if err != nil {
		return unavailable("append", err)
	}
	return nil
}

func (r *Repo) Find(ctx context.Context, f domain.EventFilter, limit int) ([]*domain.Event, error) {
	where := []string{}
	args := []any{}
	argN := 1

	add := func(condFmt string, val any) {
		where = append(where, fmt.Sprintf(condFmt, argN))
		args = append(args, val)
		argN++
	}

	if f.ActorID != "" {
		add("actor_id = $%d", f.ActorID)
	}
	if f.SessionID != "" {
		add("session_id = $%d", f.SessionID)
	}
	if f.ProductID != "" {
		add("product_id = $%d", f.ProductID)
	}
	if f.Action != "" {
		add("action = $%d", string(f.Action))
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at <= $%d", *f.To)
	}

	whereSQL := ""
	if len(where) > 0 {
		whereSQL = "WHERE " + strings.Join(where, " AND ")
	}

	q := `
SELECT ` + eventColumns + `
FROM tracking_events
` + whereSQL + `
ORDER BY created_at DESC, seq DESC
LIMIT $` + fmt.Sprintf("%d", argN)
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, unavailable("find", err)
	}
	defer rows.Close()

	out := []*domain.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, unavailable("find", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("find", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(s scanner) (*domain.Event, error) {
	var (
		e                 domain.Event
		session, category sql.NullString
		action            string
		metadata          []byte
	)
	if err := s.Scan(&e.ID, &e.ActorID, &session, &e.ProductID, &category, &action, &metadata, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.SessionID = session.String
	e.CategoryID = category.String
	e.Action = domain.Action(action)
	e.Metadata = map[string]any{}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata of %s: %w", e.ID, err)
		}
	}
	e.CreatedAt = e.CreatedAt.UTC()
	return &e, nil
}

func (r *Repo) DistinctProductsViewedBy(ctx context.Context, actorID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, distinctViewedSQL, actorID)
	if err != nil {
		return nil, unavailable("distinct viewed", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, unavailable("distinct viewed", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("distinct viewed", err)
	}
	return out, nil
}

func (r *Repo) ActionSummary(ctx context.Context, actorID string) (map[domain.Action]domain.ActionStat, error) {
	rows, err := r.db.QueryContext(ctx, actionSummarySQL, actorID)
	if err != nil {
		return nil, unavailable("action summary", err)
	}
	defer rows.Close()

	out := map[domain.Action]domain.ActionStat{}
	for rows.Next() {
		var (
			action string
			st     domain.ActionStat
		)
		if err := rows.Scan(&action, &st.Count, &st.LastActivity); err != nil {
			return nil, unavailable("action summary", err)
		}
		st.LastActivity = st.LastActivity.UTC()
		out[domain.Action(action)] = st
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("action summary", err)
	}
	return out, nil
}

func (r *Repo) ActivityCounts(ctx context.Context, g domain.Granularity, since *time.Time) ([]domain.BucketCount, error) {
	format := "YYYY-MM-DD"
	if g == domain.GranularityHour {
		format = "HH24"
	}
	args := []any{}
	whereSQL := ""
	if since != nil {
		whereSQL = "WHERE created_at >= $1"
		args = append(args, *since)
	}
	q := `
SELECT to_char(created_at AT TIME ZONE 'UTC', '` + format + `') AS bucket, action, COUNT(*)
FROM tracking_events
` + whereSQL + `
GROUP BY bucket, action
ORDER BY bucket, action`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, unavailable("activity counts", err)
	}
	defer rows.Close()

	out := []domain.BucketCount{}
	for rows.Next() {
		var (
			bc     domain.BucketCount
			action string
		)
		if err := rows.Scan(&bc.Bucket, &action, &bc.Count); err != nil {
			return nil, unavailable("activity counts", err)
		}
		bc.Action = domain.Action(action)
		out = append(out, bc)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("activity counts", err)
	}
	return out, nil
}

// ReassignSession is a single UPDATE, so concurrent merges of disjoint
// sessions touch disjoint rows and a repeated merge matches nothing.
func (r *Repo) ReassignSession(ctx context.Context, sessionID, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, reassignSessionSQL, sessionID, userID)
	if err != nil {
		return 0, unavailable("reassign session", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, unavailable("reassign session", err)
	}
	return n, nil
}

func (r *Repo) queryProductStats(ctx context.Context, op, q string, args ...any) ([]domain.ProductStat, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, unavailable(op, err)
	}
	defer rows.Close()

	out := []domain.ProductStat{}
	for rows.Next() {
		var st domain.ProductStat
		if err := rows.Scan(&st.ProductID, &st.Count, &st.DistinctActors); err != nil {
			return nil, unavailable(op, err)
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(op, err)
	}
	return out, nil
}

func (r *Repo) ProductInteractions(ctx context.Context, excludeActorID string) ([]domain.ProductStat, error) {
	return r.queryProductStats(ctx, "product interactions", productInteractionsSQL, excludeActorID, catalogIDPattern)
}

func (r *Repo) ProductViews(ctx context.Context) ([]domain.ProductStat, error) {
	return r.queryProductStats(ctx, "product views", productViewsSQL, catalogIDPattern)
}

func (r *Repo) CoViewedProducts(ctx context.Context, productID string) ([]domain.ProductStat, error) {
	return r.queryProductStats(ctx, "co-viewed products", coViewedSQL, productID, catalogIDPattern)
}

func (r *Repo) CategoryWeights(ctx context.Context, productIDs []string) ([]domain.CategoryWeight, error) {
	if len(productIDs) == 0 {
		return []domain.CategoryWeight{}, nil
	}
	rows, err := r.db.QueryContext(ctx, categoryWeightsSQL, pq.Array(productIDs))
	if err != nil {
		return nil, unavailable("category weights", err)
	}
	defer rows.Close()

	out := []domain.CategoryWeight{}
	for rows.Next() {
		var w domain.CategoryWeight
		if err := rows.Scan(&w.CategoryID, &w.Weight); err != nil {
			return nil, unavailable("category weights", err)
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("category weights", err)
	}
	return out, nil
}

func (r *Repo) CategoryProductCounts(ctx context.Context, categoryIDs []string) ([]domain.CategoryProductCount, error) {
	if len(categoryIDs) == 0 {
		return []domain.CategoryProductCount{}, nil
	}
	rows, err := r.db.QueryContext(ctx, categoryProductCountsSQL, pq.Array(categoryIDs), catalogIDPattern)
	if err != nil {
		return nil, unavailable("category product counts", err)
	}
	defer rows.Close()

	out := []domain.CategoryProductCount{}
	for rows.Next() {
		var c domain.CategoryProductCount
		if err := rows.Scan(&c.CategoryID, &c.ProductID, &c.Count); err != nil {
			return nil, unavailable("category product counts", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("category product counts", err)
	}
	return out, nil
}
