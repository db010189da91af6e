package defra

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// IDPattern matches valid DefraDB document IDs (bae-<uuid> format) and simple identifiers.
// This is used to validate IDs before interpolation to prevent GraphQL injection.
var IDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateID checks if a string is safe to use as a document ID in GraphQL queries.
// Returns an error if the ID contains characters that could be used for injection.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("empty ID")
	}
	if len(id) > 500 {
		return fmt.Errorf("ID too long: %d characters", len(id))
	}
	if !IDPattern.MatchString(id) {
		return fmt.Errorf("invalid ID format: contains unsafe characters")
	}
	return nil
}

// SafeID validates an ID and returns it if safe, or returns empty string and error.
// This is the preferred function for validating IDs before use in queries.
func SafeID(id string) (string, error) {
	if err := ValidateID(id); err != nil {
		return "", err
	}
	return id, nil
}

// QueryBuilder helps construct safe, parameterized GraphQL queries.
// It uses GraphQL variables to prevent injection attacks.
type QueryBuilder struct {
	collection string
	filters    []filterDef
	fields     []string
	order      string
	limit      int
	offset     int
	varIndex   int
}

type filterDef struct {
	field   string
	op      string
	varName string
	varType string
	value   any
}

// NewQuery creates a new QueryBuilder for the given collection.
func NewQuery(collection string) *QueryBuilder {
	return &QueryBuilder{
		collection: collection,
		fields:     []string{"_docID"},
	}
}

// Filter adds an equality filter.
func (q *QueryBuilder) Filter(field string, value any) *QueryBuilder {
	return q.addFilter(field, "_eq", value)
}

// FilterIn adds an _in filter for matching any of the values.
func (q *QueryBuilder) FilterIn(field string, values []string) *QueryBuilder {
	varName := q.nextVarName()
	q.filters = append(q.filters, filterDef{
		field:   field,
		op:      "_in",
		varName: varName,
		varType: "[String!]",
		value:   values,
	})
	return q
}

// FilterGT adds a greater-than filter.
func (q *QueryBuilder) FilterGT(field string, value any) *QueryBuilder {
	return q.addFilter(field, "_gt", value)
}

// FilterLT adds a less-than filter.
func (q *QueryBuilder) FilterLT(field string, value any) *QueryBuilder {
	return q.addFilter(field, "_lt", value)
}

func (q *QueryBuilder) addFilter(field, op string, value any) *QueryBuilder {
	varName := q.nextVarName()
	q.filters = append(q.filters, filterDef{
		field:   field,
		op:      op,
		varName: varName,
		varType: inferGraphQLType(value),
		value:   value,
	})
	return q
}

// Fields sets the fields to return (replaces default of just _docID).
func (q *QueryBuilder) Fields(fields ...string) *QueryBuilder {
	q.fields = fields
	return q
}

// OrderBy sets the ordering.
func (q *QueryBuilder) OrderBy(field string, direction string) *QueryBuilder {
	q.order = fmt.Sprintf("{%s: %s}", field, direction)
	return q
}

// Limit sets the maximum number of results.
func (q *QueryBuilder) Limit(n int) *QueryBuilder {
	q.limit = n
	return q
}

// Offset sets the offset for pagination.
func (q *QueryBuilder) Offset(n int) *QueryBuilder {
	q.offset = n
	return q
}

// Build returns the query string and variables map.
func (q *QueryBuilder) Build() (string, map[string]any) {
	// Build variable definitions
	var varDefs []string
	vars := make(map[string]any)

	for _, f := range q.filters {
		varDefs = append(varDefs, fmt.Sprintf("$%s: %s", f.varName, f.varType))
		vars[f.varName] = f.value
	}

	// Build filter clause
	var filterParts []string
	for _, f := range q.filters {
		filterParts = append(filterParts, fmt.Sprintf("%s: {%s: $%s}", f.field, f.op, f.varName))
	}

	// Build query
	var query strings.Builder

	// Query header with variable definitions
	if len(varDefs) > 0 {
		query.WriteString(fmt.Sprintf("query(%s) ", strings.Join(varDefs, ", ")))
	}

	query.WriteString("{ ")
	query.WriteString(q.collection)

	var args []string
	if len(filterParts) > 0 {
		args = append(args, fmt.Sprintf("filter: {%s}", strings.Join(filterParts, ", ")))
	}
	if q.order != "" {
		args = append(args, fmt.Sprintf("order: %s", q.order))
	}
	if q.limit > 0 {
		args = append(args, fmt.Sprintf("limit: %d", q.limit))
	}
	if q.offset > 0 {
		args = append(args, fmt.Sprintf("offset: %d", q.offset))
	}
	if len(args) > 0 {
		query.WriteString(fmt.Sprintf("(%s)", strings.Join(args, ", ")))
	}

	// Add fields
	query.WriteString(" { ")
	query.WriteString(strings.Join(q.fields, " "))
	query.WriteString(" } }")

	return query.String(), vars
}

// Execute builds and executes the query on the given client.
func (q *QueryBuilder) Execute(ctx context.Context, client *Client) (*GQLResponse, error) {
	query, vars := q.Build()
	return client.Execute(ctx, query, vars)
}

// nextVarName generates the next variable name.
func (q *QueryBuilder) nextVarName() string {
	name := fmt.Sprintf("v%d", q.varIndex)
	q.varIndex++
	return name
}

// inferGraphQLType infers the GraphQL type from a Go value. time.Time
// values map to DefraDB's DateTime scalar and travel as RFC3339 strings
// in the variables payload.
func inferGraphQLType(v any) string {
	switch v.(type) {
	case string:
		return "String"
	case int, int32, int64:
		return "Int"
	case float32, float64:
		return "Float"
	case bool:
		return "Boolean"
	case time.Time:
		return "DateTime"
	default:
		return "String" // Default to String
	}
}
