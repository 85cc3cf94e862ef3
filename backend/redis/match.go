package redis

import (
	"fmt"
	"strings"

	elastic "github.com/spaisey/spring-data-elasticsearch"
)

// matchCriteria evaluates a criteria tree against a document. A nil tree
// matches everything. Field paths are document field names, dotted for nested
// documents, as produced by the query rewriter.
func matchCriteria(cr *elastic.Criteria, doc elastic.Document) bool {
	if cr == nil {
		return true
	}

	if children := cr.Children(); len(children) > 0 {
		switch cr.Operator() {
		case elastic.OperatorOr:
			for _, child := range children {
				if matchCriteria(child, doc) {
					return true
				}
			}
			return false
		default:
			for _, child := range children {
				if !matchCriteria(child, doc) {
					return false
				}
			}
			return true
		}
	}

	value, present := lookupPath(doc, cr.Field())
	for _, entry := range cr.Entries() {
		if !evalEntry(entry, value, present) {
			return false
		}
	}
	return true
}

func evalEntry(entry elastic.CriteriaEntry, value any, present bool) bool {
	vals := entry.Values()
	switch entry.Kind() {
	case elastic.EntryExists:
		return present
	case elastic.EntryIs:
		return present && len(vals) == 1 && equalValue(value, vals[0])
	case elastic.EntryIn:
		if !present {
			return false
		}
		for _, v := range vals {
			if equalValue(value, v) {
				return true
			}
		}
		return false
	case elastic.EntryNotIn:
		if !present {
			return true
		}
		for _, v := range vals {
			if equalValue(value, v) {
				return false
			}
		}
		return true
	case elastic.EntryContains:
		s, ok := value.(string)
		return present && ok && len(vals) == 1 && strings.Contains(s, fmt.Sprint(vals[0]))
	case elastic.EntryGreaterThan:
		return present && len(vals) == 1 && compareValues(value, vals[0]) > 0
	case elastic.EntryGreaterThanEqual:
		return present && len(vals) == 1 && compareValues(value, vals[0]) >= 0
	case elastic.EntryLessThan:
		return present && len(vals) == 1 && compareValues(value, vals[0]) < 0
	case elastic.EntryLessThanEqual:
		return present && len(vals) == 1 && compareValues(value, vals[0]) <= 0
	case elastic.EntryBetween:
		return present && len(vals) == 2 &&
			compareValues(value, vals[0]) >= 0 && compareValues(value, vals[1]) <= 0
	default:
		return false
	}
}

// lookupPath resolves a dotted field path through nested documents.
func lookupPath(doc elastic.Document, path string) (any, bool) {
	parts := strings.Split(path, ".")
	var cur any = doc
	for _, part := range parts {
		d, ok := cur.(elastic.Document)
		if !ok {
			return nil, false
		}
		cur, ok = d.Get(part)
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// equalValue compares numerically when both sides are numbers, otherwise by
// string form. Documents decoded from JSON carry int64/float64 while criteria
// literals keep their original Go types, so a plain == would miss.
func equalValue(a, b any) bool {
	an, aok := toFloat(a)
	bn, bok := toFloat(b)
	if aok && bok {
		return an == bn
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func compareValues(a, b any) int {
	an, aok := toFloat(a)
	bn, bok := toFloat(b)
	if aok && bok {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	default:
		return 0, false
	}
}
