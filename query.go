package elastic

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// UpdateQuery rewrites the query's criteria so domain property names become
// document field paths and literal values pass through the property's custom
// converter, if any. Dotted nested paths resolve component by component;
// unresolvable paths (meta-fields such as _score) are left untouched. The
// query is mutated in place and rewriting is idempotent.
func (c *Converter) UpdateQuery(q *CriteriaQuery, domain any) error {
	start := time.Now()
	err := c.updateQuery(q, domain)
	c.obs.observe("update_query", start, err)
	return err
}

func (c *Converter) updateQuery(q *CriteriaQuery, domain any) error {
	if q == nil {
		return fmt.Errorf("%w: query must not be nil", ErrInvalidArgument)
	}
	if domain == nil {
		return fmt.Errorf("%w: domain sample must not be nil", ErrInvalidArgument)
	}
	meta, err := c.registry.Describe(reflect.TypeOf(domain))
	if err != nil {
		return err
	}
	return c.rewriteCriteria(meta, q.Criteria)
}

func (c *Converter) rewriteCriteria(meta *EntityMetadata, cr *Criteria) error {
	if cr == nil {
		return nil
	}
	for _, child := range cr.children {
		if err := c.rewriteCriteria(meta, child); err != nil {
			return err
		}
	}
	if cr.field == "" || cr.mapped {
		return nil
	}

	fieldPath, prop, ok := resolvePath(meta, cr.field)
	if !ok {
		// Lenient pass-through for meta-fields not present in metadata.
		return nil
	}

	// Convert all literals before touching the node, so a failed conversion
	// leaves it unmarked and a retry starts from the original values.
	if conv := prop.converter; conv != nil {
		converted := make([][]any, len(cr.entries))
		for i := range cr.entries {
			vals := cr.entries[i].values
			out := make([]any, len(vals))
			for j, v := range vals {
				nv, err := conv.ToField(v)
				if err != nil {
					return newConversionError(prop.propName, v, prop.typ, "%s", err)
				}
				out[j] = nv
			}
			converted[i] = out
		}
		for i := range cr.entries {
			cr.entries[i].values = converted[i]
		}
	}
	cr.field = fieldPath
	cr.mapped = true
	return nil
}

// resolvePath maps a dotted domain property path onto the corresponding
// document field path, each component resolved against its own metadata.
func resolvePath(meta *EntityMetadata, path string) (string, *Property, bool) {
	parts := strings.Split(path, ".")
	mapped := make([]string, 0, len(parts))
	cur := meta
	var last *Property
	for i, part := range parts {
		if cur == nil {
			return "", nil, false
		}
		p, ok := cur.Property(part)
		if !ok {
			return "", nil, false
		}
		mapped = append(mapped, p.fieldName)
		last = p
		if i < len(parts)-1 {
			cur = p.nested
		}
	}
	return strings.Join(mapped, "."), last, true
}
