package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// InsertModel builds an INSERT for the exported `db`-tagged fields of model,
// in field order, followed by suffix (typically an ON CONFLICT clause).
func InsertModel(table string, model any, suffix string) (string, []any, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return "", nil, fmt.Errorf("insert into %s: model cannot be nil", table)
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return "", nil, fmt.Errorf("insert into %s: model must be a struct, got %s", table, value.Kind())
	}

	plan := columnPlanFor(value.Type())
	if len(plan.columns) == 0 {
		return "", nil, fmt.Errorf("insert into %s: %s has no db columns", table, value.Type())
	}

	vals := make([]any, len(plan.fields))
	for i, field := range plan.fields {
		vals[i] = value.Field(field).Interface()
	}
	return InsertInto(table).
		Columns(plan.columns...).
		Values(vals...).
		Suffix(suffix).
		ToSQL()
}

type columnPlan struct {
	columns []string
	fields  []int
}

var columnPlans sync.Map // reflect.Type -> columnPlan

func columnPlanFor(typ reflect.Type) columnPlan {
	if cached, ok := columnPlans.Load(typ); ok {
		return cached.(columnPlan)
	}

	var plan columnPlan
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		col, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		col = strings.TrimSpace(col)
		if col == "" || col == "-" {
			continue
		}
		plan.columns = append(plan.columns, col)
		plan.fields = append(plan.fields, i)
	}

	columnPlans.Store(typ, plan)
	return plan
}
