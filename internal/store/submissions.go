package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// SaveSubmission inserts or updates a submission record.
func (s *Store) SaveSubmission(ctx context.Context, sub Submission) error {
	q, args := s.builder().Insert(tableSubmissions).
		Columns("id", "seed", "learners", "statements", "target", "status", "error", "started_at", "finished_at").
		Values(sub.ID, int64(sub.Seed), sub.Learners, sub.Statements, sub.Target, sub.Status, sub.Error,
			formatTime(sub.StartedAt), formatTime(sub.FinishedAt)).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("learners")
				u.SetExcluded("statements")
				u.SetExcluded("status")
				u.SetExcluded("error")
				u.SetExcluded("finished_at")
			}),
		).
		Query()
	if err := s.drv.Exec(ctx, q, args, nil); err != nil {
		return fmt.Errorf("save submission %s: %w", sub.ID, err)
	}
	return nil
}

// Submissions returns the most recent submissions first. limit <= 0
// returns all of them.
func (s *Store) Submissions(ctx context.Context, limit int) ([]Submission, error) {
	b := s.builder()
	t := b.Table(tableSubmissions)
	sel := b.Select(
		t.C("id"), t.C("seed"), t.C("learners"), t.C("statements"), t.C("target"),
		t.C("status"), t.C("error"), t.C("started_at"), t.C("finished_at"),
	).
		From(t).
		OrderBy(entsql.Desc(t.C("started_at")))
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()

	rows := &entsql.Rows{}
	if err := s.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	var out []Submission
	for rows.Next() {
		var (
			sub               Submission
			seed              int64
			started, finished string
		)
		if err := rows.Scan(&sub.ID, &seed, &sub.Learners, &sub.Statements, &sub.Target,
			&sub.Status, &sub.Error, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		sub.Seed = uint64(seed)
		var err error
		if sub.StartedAt, err = parseTime(started); err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if sub.FinishedAt, err = parseTime(finished); err != nil {
			return nil, fmt.Errorf("parse finished_at: %w", err)
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return out, nil
}
