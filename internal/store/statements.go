package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/learnsim/internal/xapi"
)

// SaveBulkStatements stores statements in a single transaction. Either
// every statement is stored or none is. Statements whose id already
// exists are skipped.
func (s *Store) SaveBulkStatements(ctx context.Context, statements []xapi.Statement) error {
	if len(statements) == 0 {
		return nil
	}
	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin statements: %w", err)
	}
	storedAt := formatTime(time.Now())
	for _, st := range statements {
		payload, err := json.Marshal(st)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("marshal statement %s: %w", st.ID, err)
		}
		registration := ""
		if st.Context != nil {
			registration = st.Context.Registration
		}
		q, args := s.builder().Insert(tableStatements).
			Columns("id", "actor", "verb_id", "object_id", "registration", "timestamp", "created_at", "payload").
			Values(st.ID, st.Actor.Mbox, st.Verb.ID, st.Object.ID, registration, formatTime(st.Timestamp), storedAt, string(payload)).
			OnConflict(entsql.ConflictColumns("id"), entsql.DoNothing()).
			Query()
		if err := tx.Exec(ctx, q, args, nil); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert statement %s: %w", st.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit statements: %w", err)
	}
	return nil
}

// QueryStatements returns stored statements matching q, oldest first.
func (s *Store) QueryStatements(ctx context.Context, q xapi.Query) ([]xapi.Statement, error) {
	b := s.builder()
	t := b.Table(tableStatements)
	sel := b.Select(t.C("payload")).From(t)

	var preds []*entsql.Predicate
	if q.Actor != "" {
		actor := q.Actor
		if !strings.HasPrefix(actor, "mailto:") {
			actor = "mailto:" + actor
		}
		preds = append(preds, entsql.EQ(t.C("actor"), actor))
	}
	if q.VerbID != "" {
		preds = append(preds, entsql.EQ(t.C("verb_id"), q.VerbID))
	}
	if q.ActivityID != "" {
		preds = append(preds, entsql.EQ(t.C("object_id"), q.ActivityID))
	}
	if q.Registration != "" {
		preds = append(preds, entsql.EQ(t.C("registration"), q.Registration))
	}
	if !q.Since.IsZero() {
		preds = append(preds, entsql.GTE(t.C("timestamp"), formatTime(q.Since)))
	}
	if !q.Until.IsZero() {
		preds = append(preds, entsql.LTE(t.C("timestamp"), formatTime(q.Until)))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	sel.OrderBy(t.C("timestamp"), t.C("id"))
	if q.Limit > 0 {
		sel.Limit(q.Limit)
	}

	query, args := sel.Query()
	rows := &entsql.Rows{}
	if err := s.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query statements: %w", err)
	}
	defer rows.Close()

	var out []xapi.Statement
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan statement: %w", err)
		}
		var st xapi.Statement
		if err := json.Unmarshal([]byte(payload), &st); err != nil {
			return nil, fmt.Errorf("decode statement: %w", err)
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate statements: %w", err)
	}
	return out, nil
}

// CountStatements returns the number of stored statements.
func (s *Store) CountStatements(ctx context.Context) (int, error) {
	b := s.builder()
	query, args := b.Select(entsql.Count("*")).From(b.Table(tableStatements)).Query()
	rows := &entsql.Rows{}
	if err := s.drv.Query(ctx, query, args, rows); err != nil {
		return 0, fmt.Errorf("count statements: %w", err)
	}
	defer rows.Close()

	n := 0
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, fmt.Errorf("scan count: %w", err)
		}
	}
	return n, rows.Err()
}

// VerbCounts returns statement counts per verb, most used first.
func (s *Store) VerbCounts(ctx context.Context) ([]VerbCount, error) {
	b := s.builder()
	t := b.Table(tableStatements)
	query, args := b.Select(t.C("verb_id"), entsql.As(entsql.Count("*"), "n")).
		From(t).
		GroupBy(t.C("verb_id")).
		OrderBy(entsql.Desc("n"), t.C("verb_id")).
		Query()

	rows := &entsql.Rows{}
	if err := s.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query verb counts: %w", err)
	}
	defer rows.Close()

	var out []VerbCount
	for rows.Next() {
		var vc VerbCount
		if err := rows.Scan(&vc.VerbID, &vc.Count); err != nil {
			return nil, fmt.Errorf("scan verb count: %w", err)
		}
		out = append(out, vc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verb counts: %w", err)
	}
	return out, nil
}
