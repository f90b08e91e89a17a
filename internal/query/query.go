// Package query models listing queries as immutable values that compile to
// parameterized SQL with keyset pagination.
package query

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

type Operator string

const (
	OperatorEqual  Operator = "equal"
	OperatorSearch Operator = "search"
)

var (
	ErrUnknownField     = errors.New("query: unknown field")
	ErrCursorNeedsOrder = errors.New("query: cursor requires an order field")
)

type Filter struct {
	Field    string
	Operator Operator
	Value    any
}

// Query is a value type. Every builder method returns a copy, so a base query
// can be shared and extended without affecting other users of it.
type Query struct {
	Filters    []Filter
	OrderField string
	Descending bool
	LimitCount int
	Cursor     uuid.UUID
}

// Table whitelists the columns a query may reference. Alias prefixes every
// column in the generated clause.
type Table struct {
	Name   string
	Alias  string
	Fields []string
}

func New() Query {
	return Query{}
}

func (q Query) Equal(field string, value any) Query {
	q.Filters = append(slices.Clone(q.Filters), Filter{Field: field, Operator: OperatorEqual, Value: value})
	return q
}

// Search matches documents whose field contains every word of text.
func (q Query) Search(field string, text string) Query {
	q.Filters = append(slices.Clone(q.Filters), Filter{Field: field, Operator: OperatorSearch, Value: text})
	return q
}

func (q Query) OrderDesc(field string) Query {
	q.OrderField = field
	q.Descending = true
	return q
}

func (q Query) OrderAsc(field string) Query {
	q.OrderField = field
	q.Descending = false
	return q
}

func (q Query) Limit(n int) Query {
	q.LimitCount = n
	return q
}

// CursorAfter continues the listing after the document with the given id.
// uuid.Nil means the first page.
func (q Query) CursorAfter(id uuid.UUID) Query {
	q.Cursor = id
	return q
}

func (table Table) column(field string) (string, error) {
	if !slices.Contains(table.Fields, field) {
		return "", fmt.Errorf("%w: %s.%s", ErrUnknownField, table.Name, field)
	}

	if table.Alias == "" {
		return field, nil
	}

	return table.Alias + "." + field, nil
}

// Clause renders the WHERE, ORDER BY and LIMIT part of the query. Placeholders
// start after argOffset so the clause can follow a statement that already
// binds arguments.
func (q Query) Clause(table Table, argOffset int) (string, []any, error) {
	var conditions []string
	var args []any

	placeholder := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", argOffset+len(args))
	}

	for _, filter := range q.Filters {
		column, err := table.column(filter.Field)
		if err != nil {
			return "", nil, err
		}

		switch filter.Operator {
		case OperatorEqual:
			conditions = append(conditions, fmt.Sprintf("%s = %s", column, placeholder(filter.Value)))
		case OperatorSearch:
			conditions = append(conditions, fmt.Sprintf("to_tsvector('simple', %s) @@ plainto_tsquery('simple', %s)", column, placeholder(filter.Value)))
		default:
			return "", nil, fmt.Errorf("query: unsupported operator %q", filter.Operator)
		}
	}

	var orderColumn, idColumn string
	if q.OrderField != "" {
		var err error
		orderColumn, err = table.column(q.OrderField)
		if err != nil {
			return "", nil, err
		}

		idColumn, err = table.column("id")
		if err != nil {
			return "", nil, err
		}
	}

	if q.Cursor != uuid.Nil {
		if orderColumn == "" {
			return "", nil, ErrCursorNeedsOrder
		}

		comparison := ">"
		if q.Descending {
			comparison = "<"
		}

		conditions = append(conditions, fmt.Sprintf("(%s, %s) %s (SELECT %s, id FROM %s WHERE id = %s)",
			orderColumn, idColumn, comparison, q.OrderField, table.Name, placeholder(q.Cursor)))
	}

	var builder strings.Builder
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}

	if orderColumn != "" {
		direction := "ASC"
		if q.Descending {
			direction = "DESC"
		}
		fmt.Fprintf(&builder, " ORDER BY %s %s, %s %s", orderColumn, direction, idColumn, direction)
	}

	if q.LimitCount > 0 {
		fmt.Fprintf(&builder, " LIMIT %s", placeholder(q.LimitCount))
	}

	return builder.String(), args, nil
}

// Build renders a complete SELECT of columns from table.
func (q Query) Build(table Table, columns string) (string, []any, error) {
	clause, args, err := q.Clause(table, 0)
	if err != nil {
		return "", nil, err
	}

	from := table.Name
	if table.Alias != "" {
		from = table.Name + " " + table.Alias
	}

	return "SELECT " + columns + " FROM " + from + clause, args, nil
}
