package xapi

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed statement.schema.json
var statementSchema []byte

const statementSchemaURL = "schema://xapi-statement.json"

var (
	compiledSchema *jsonschema.Schema
	compileErr     error
	compileOnce    sync.Once
)

// StatementError reports a statement that failed schema validation.
type StatementError struct {
	Index int
	ID    string
	Err   error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("statement %d (%s) invalid: %v", e.Index, e.ID, e.Err)
}

func (e *StatementError) Unwrap() error { return e.Err }

// Validator checks statements against the embedded statement schema.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles the statement schema once per process.
func NewValidator() (*Validator, error) {
	compileOnce.Do(func() {
		var doc any
		if err := json.Unmarshal(statementSchema, &doc); err != nil {
			compileErr = fmt.Errorf("parse statement schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(statementSchemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add statement schema: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(statementSchemaURL)
		if compileErr != nil {
			compileErr = fmt.Errorf("compile statement schema: %w", compileErr)
		}
	})
	if compileErr != nil {
		return nil, compileErr
	}
	return &Validator{schema: compiledSchema}, nil
}

// Validate checks one statement.
func (v *Validator) Validate(st Statement) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal statement: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("unmarshal statement: %w", err)
	}
	return v.schema.Validate(doc)
}

// ValidateAll checks statements in order and returns the first failure
// as a *StatementError.
func (v *Validator) ValidateAll(statements []Statement) error {
	for i, st := range statements {
		if err := v.Validate(st); err != nil {
			return &StatementError{Index: i, ID: st.ID, Err: err}
		}
	}
	return nil
}
