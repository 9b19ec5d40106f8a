package store

import (
	"context"
	"fmt"
	"strings"

	"entgo.io/ent"
	sqlschema "entgo.io/ent/dialect/sql/schema"

	entschema "github.com/abhisek/learnsim/ent/schema"
)

// entities lists the ent schemas backing each table.
var entities = []struct {
	table  string
	schema ent.Interface
}{
	{tableLearners, entschema.Learner{}},
	{tableStatements, entschema.Statement{}},
	{tableSubmissions, entschema.Submission{}},
}

// Tables builds the migration tables from the ent schemas.
func Tables() ([]*sqlschema.Table, error) {
	out := make([]*sqlschema.Table, 0, len(entities))
	for _, e := range entities {
		t, err := tableOf(e.table, e.schema)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func tableOf(name string, s ent.Interface) (*sqlschema.Table, error) {
	var (
		fields  []ent.Field
		indexes []ent.Index
	)
	for _, m := range s.Mixin() {
		fields = append(fields, m.Fields()...)
		indexes = append(indexes, m.Indexes()...)
	}
	fields = append(fields, s.Fields()...)
	indexes = append(indexes, s.Indexes()...)

	t := &sqlschema.Table{Name: name}
	columns := make(map[string]*sqlschema.Column, len(fields))
	for _, f := range fields {
		d := f.Descriptor()
		if d.Err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", name, d.Name, d.Err)
		}
		c := &sqlschema.Column{
			Name:     d.Name,
			Type:     d.Info.Type,
			Size:     int64(d.Size),
			Nullable: d.Optional,
			Comment:  d.Comment,
		}
		// Mixin fields come first; the primary key leads the column list.
		if d.Name == "id" {
			t.PrimaryKey = []*sqlschema.Column{c}
			t.Columns = append([]*sqlschema.Column{c}, t.Columns...)
		} else {
			t.Columns = append(t.Columns, c)
		}
		columns[d.Name] = c
	}
	if len(t.PrimaryKey) == 0 {
		return nil, fmt.Errorf("table %s: missing id field", name)
	}

	for _, ix := range indexes {
		d := ix.Descriptor()
		idx := &sqlschema.Index{
			Name:   name + "_" + strings.Join(d.Fields, "_"),
			Unique: d.Unique,
		}
		for _, col := range d.Fields {
			c, ok := columns[col]
			if !ok {
				return nil, fmt.Errorf("index %s: unknown column %s", idx.Name, col)
			}
			idx.Columns = append(idx.Columns, c)
		}
		t.Indexes = append(t.Indexes, idx)
	}
	return t, nil
}

func (s *Store) migrate(ctx context.Context) error {
	tables, err := Tables()
	if err != nil {
		return err
	}
	m, err := sqlschema.NewMigrate(s.drv)
	if err != nil {
		return fmt.Errorf("prepare migration: %w", err)
	}
	return m.Create(ctx, tables...)
}
