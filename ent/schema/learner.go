package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Learner is a generated learner profile.
type Learner struct {
	ent.Schema
}

func (Learner) Mixin() []ent.Mixin {
	return []ent.Mixin{RecordMixin{}}
}

func (Learner) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			MaxLen(64).
			NotEmpty().
			Immutable().
			Comment("Learner UUID"),
		field.String("email").
			MaxLen(255).
			Comment("Learner mailbox without the mailto: prefix"),
		field.String("persona").
			MaxLen(32).
			Comment("Persona the profile was drawn from"),
		field.Text("metrics").
			Comment("Behavioral metrics as JSON"),
	}
}

func (Learner) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("persona"),
	}
}
