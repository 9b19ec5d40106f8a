package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Statement is one stored xAPI statement. The full statement is kept as
// JSON; the columns beside it exist for filtering.
type Statement struct {
	ent.Schema
}

func (Statement) Mixin() []ent.Mixin {
	return []ent.Mixin{RecordMixin{}}
}

func (Statement) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			MaxLen(64).
			NotEmpty().
			Immutable().
			Comment("Statement UUID"),
		field.String("actor").
			MaxLen(255).
			Comment("Actor mbox IRI"),
		field.String("verb_id").
			MaxLen(255).
			Comment("Verb IRI"),
		field.String("object_id").
			MaxLen(512).
			Comment("Object activity IRI"),
		field.String("registration").
			MaxLen(64).
			Comment("Session UUID, empty when absent"),
		field.String("timestamp").
			MaxLen(40).
			Comment("Statement time as a fixed-width UTC string"),
		field.Text("payload").
			Comment("Statement JSON"),
	}
}

func (Statement) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("timestamp"),
		index.Fields("verb_id"),
		index.Fields("actor"),
	}
}
