package models

import (
	"encoding/json"

	"github.com/docquery-inc/docquery-engine/pkg/jsonutil"
)

// Aggregate functions accepted by the plan validator.
const (
	AggSum   = "sum"
	AggAvg   = "avg"
	AggCount = "count"
	AggMin   = "min"
	AggMax   = "max"
)

// AllowedAggregateFuncs is the allow-list for Aggregate.Func.
var AllowedAggregateFuncs = map[string]bool{
	AggSum:   true,
	AggAvg:   true,
	AggCount: true,
	AggMin:   true,
	AggMax:   true,
}

// AllowedFilterOps is the allow-list for Filter.Op.
var AllowedFilterOps = map[string]bool{
	">=":       true,
	"<=":       true,
	">":        true,
	"<":        true,
	"=":        true,
	"!=":       true,
	"in":       true,
	"between":  true,
	"contains": true,
}

// FilterValue holds a filter's comparison value: a single scalar, a BETWEEN
// pair, or an IN list. Values are kept as strings; the SQL compiler binds
// them as parameters and lets the store coerce.
type FilterValue struct {
	Values []string
	List   bool // true when the draft supplied a JSON array
}

// UnmarshalJSON accepts either a scalar (string/number/bool) or an array of
// scalars, tolerating the type drift typical of generated JSON.
func (v *FilterValue) UnmarshalJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err == nil {
		v.List = true
		v.Values = make([]string, 0, len(items))
		for _, item := range items {
			v.Values = append(v.Values, jsonutil.FlexibleStringValue(item))
		}
		return nil
	}
	v.List = false
	v.Values = []string{jsonutil.FlexibleStringValue(data)}
	return nil
}

// MarshalJSON renders the value back in its original shape.
func (v FilterValue) MarshalJSON() ([]byte, error) {
	if v.List {
		return json.Marshal(v.Values)
	}
	if len(v.Values) == 0 {
		return json.Marshal("")
	}
	return json.Marshal(v.Values[0])
}

// First returns the scalar value, or "" when empty.
func (v FilterValue) First() string {
	if len(v.Values) == 0 {
		return ""
	}
	return v.Values[0]
}

// Filter is one predicate of a plan. ColumnID references the resolved
// table's columns; Column is filled in by the validator.
type Filter struct {
	ColumnID *int        `json:"col_id"`
	Op       string      `json:"op"`
	Value    FilterValue `json:"value"`

	// Column is the resolved header name. Set during validation; never
	// trusted from the draft.
	Column string `json:"-"`
}

// UnmarshalJSON tolerates col_id arriving as a float or quoted number.
func (f *Filter) UnmarshalJSON(data []byte) error {
	var raw struct {
		ColumnID json.RawMessage `json:"col_id"`
		Op       json.RawMessage `json:"op"`
		Value    json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if id, ok := jsonutil.FlexibleIntValue(raw.ColumnID); ok {
		f.ColumnID = &id
	}
	f.Op = jsonutil.FlexibleStringValue(raw.Op)
	if len(raw.Value) > 0 {
		if err := f.Value.UnmarshalJSON(raw.Value); err != nil {
			return err
		}
	}
	return nil
}

// Aggregate is one aggregation of a plan. ColumnID is absent for count.
// Column and a defaulted Alias are filled in by the validator.
type Aggregate struct {
	Func     string `json:"func"`
	ColumnID *int   `json:"col_id"`
	Alias    string `json:"as"`

	// Column is the resolved header name, empty for count. Set during
	// validation.
	Column string `json:"-"`
}

// UnmarshalJSON tolerates col_id type drift and missing fields.
func (a *Aggregate) UnmarshalJSON(data []byte) error {
	var raw struct {
		Func     json.RawMessage `json:"func"`
		ColumnID json.RawMessage `json:"col_id"`
		Alias    json.RawMessage `json:"as"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.Func = jsonutil.FlexibleStringValue(raw.Func)
	if id, ok := jsonutil.FlexibleIntValue(raw.ColumnID); ok {
		a.ColumnID = &id
	}
	a.Alias = jsonutil.FlexibleStringValue(raw.Alias)
	return nil
}

// OrderTerm is one ORDER BY entry. The draft may reference a column id or an
// alias/column name; the compiler resolves ids to aggregate aliases when the
// id matches an aggregate's column.
type OrderTerm struct {
	Column   string `json:"column"`
	ColumnID *int   `json:"col_id"`
	Dir      string `json:"dir"`
}

// UnmarshalJSON tolerates col_id type drift.
func (o *OrderTerm) UnmarshalJSON(data []byte) error {
	var raw struct {
		Column   json.RawMessage `json:"column"`
		ColumnID json.RawMessage `json:"col_id"`
		Dir      json.RawMessage `json:"dir"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	o.Column = jsonutil.FlexibleStringValue(raw.Column)
	if id, ok := jsonutil.FlexibleIntValue(raw.ColumnID); ok {
		o.ColumnID = &id
	}
	o.Dir = jsonutil.FlexibleStringValue(raw.Dir)
	return nil
}

// Plan is the intermediate representation between natural-language intent
// and compiled SQL. It is built fresh per question, normalized in place by
// the validator, compiled exactly once, and discarded.
type Plan struct {
	Table      TableRef    `json:"table"`
	Filters    []Filter    `json:"filters"`
	GroupBy    []int       `json:"group_by"`
	Aggregates []Aggregate `json:"aggregates"`
	OrderBy    []OrderTerm `json:"order_by"`
	Limit      int         `json:"limit"`

	// GroupColumns holds the resolved header names for GroupBy. Set during
	// validation; the compiler reads only this.
	GroupColumns []string `json:"-"`
}

// UnmarshalJSON accepts the loosely typed JSON a drafting model emits:
// group_by entries that are floats or quoted ints, order_by as an object or
// an array, and a flexible limit.
func (p *Plan) UnmarshalJSON(data []byte) error {
	var raw struct {
		Table      json.RawMessage   `json:"table"`
		Filters    []Filter          `json:"filters"`
		GroupBy    []json.RawMessage `json:"group_by"`
		Aggregates []Aggregate       `json:"aggregates"`
		OrderBy    json.RawMessage   `json:"order_by"`
		Limit      json.RawMessage   `json:"limit"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	p.Filters = raw.Filters
	p.Aggregates = raw.Aggregates

	// Table identity from the draft is ignored downstream (the resolver's
	// choice is authoritative), but parse it when well-formed.
	if len(raw.Table) > 0 {
		_ = json.Unmarshal(raw.Table, &p.Table)
	}

	p.GroupBy = nil
	for _, g := range raw.GroupBy {
		if id, ok := jsonutil.FlexibleIntValue(g); ok {
			p.GroupBy = append(p.GroupBy, id)
		}
	}

	p.OrderBy = nil
	if len(raw.OrderBy) > 0 {
		var terms []OrderTerm
		if err := json.Unmarshal(raw.OrderBy, &terms); err == nil {
			p.OrderBy = terms
		} else {
			var single OrderTerm
			if err := json.Unmarshal(raw.OrderBy, &single); err == nil {
				p.OrderBy = []OrderTerm{single}
			}
		}
	}

	p.Limit = 0
	if n, ok := jsonutil.FlexibleIntValue(raw.Limit); ok && n > 0 {
		p.Limit = n
	}
	return nil
}
