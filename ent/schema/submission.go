package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Submission records one generation run and where its statements went.
type Submission struct {
	ent.Schema
}

func (Submission) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			MaxLen(64).
			NotEmpty().
			Immutable().
			Comment("Run UUID"),
		field.Int64("seed").
			Comment("Generator seed, stored as its two's complement bits"),
		field.Int("learners"),
		field.Int("statements"),
		field.String("target").
			MaxLen(512).
			Comment("Sink name or LRS endpoint"),
		field.String("status").
			MaxLen(16).
			Comment("running, succeeded or failed"),
		field.Text("error"),
		field.String("started_at").
			MaxLen(40),
		field.String("finished_at").
			MaxLen(40),
	}
}

func (Submission) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("started_at"),
	}
}
