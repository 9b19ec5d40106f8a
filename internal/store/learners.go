package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/learnsim/internal/profile"
)

// SaveLearners upserts learner profiles in one transaction.
func (s *Store) SaveLearners(ctx context.Context, learners []profile.LearnerProfile) error {
	if len(learners) == 0 {
		return nil
	}
	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin learners: %w", err)
	}
	now := formatTime(time.Now())
	for _, l := range learners {
		metrics, err := json.Marshal(l.Metrics)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("marshal metrics for %s: %w", l.ID, err)
		}
		q, args := s.builder().Insert(tableLearners).
			Columns("id", "email", "persona", "metrics", "created_at").
			Values(l.ID, l.Email, string(l.Persona), string(metrics), now).
			OnConflict(
				entsql.ConflictColumns("id"),
				entsql.ResolveWith(func(u *entsql.UpdateSet) {
					u.SetExcluded("email")
					u.SetExcluded("persona")
					u.SetExcluded("metrics")
				}),
			).
			Query()
		if err := tx.Exec(ctx, q, args, nil); err != nil {
			tx.Rollback()
			return fmt.Errorf("upsert learner %s: %w", l.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit learners: %w", err)
	}
	return nil
}

// Learners returns stored learner profiles ordered by persona then email.
func (s *Store) Learners(ctx context.Context) ([]profile.LearnerProfile, error) {
	b := s.builder()
	t := b.Table(tableLearners)
	query, args := b.Select(t.C("id"), t.C("email"), t.C("persona"), t.C("metrics")).
		From(t).
		OrderBy(t.C("persona"), t.C("email")).
		Query()

	rows := &entsql.Rows{}
	if err := s.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query learners: %w", err)
	}
	defer rows.Close()

	var out []profile.LearnerProfile
	for rows.Next() {
		var (
			l       profile.LearnerProfile
			persona string
			metrics string
		)
		if err := rows.Scan(&l.ID, &l.Email, &persona, &metrics); err != nil {
			return nil, fmt.Errorf("scan learner: %w", err)
		}
		l.Persona = profile.Persona(persona)
		if err := json.Unmarshal([]byte(metrics), &l.Metrics); err != nil {
			return nil, fmt.Errorf("decode metrics for %s: %w", l.ID, err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate learners: %w", err)
	}
	return out, nil
}
