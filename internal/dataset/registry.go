package dataset

import "strings"

// overlapThreshold is invariant I3's minimum fraction of a foreign
// key's non-null values that must appear in the target's primary key
// for the relationship to be reported.
const overlapThreshold = 0.80

// Registry holds every Dataset visible to one Session: the primary
// loaded Dataset plus, for a directory-sourced connector load, its
// sibling per-file Datasets. Relationship detection spans the whole
// registry, generalizing the teacher's join_analyzer.go foreign-key
// graph from DDL-declared keys to value-overlap inference.
type Registry struct {
	order []string
	byName map[string]*Dataset
}

// NewRegistry builds a Registry from one or more Datasets, running
// relationship detection across all of them.
func NewRegistry(datasets ...*Dataset) *Registry {
	r := &Registry{byName: make(map[string]*Dataset, len(datasets))}
	for _, d := range datasets {
		r.order = append(r.order, d.Name)
		r.byName[d.Name] = d
	}
	r.detectRelationships()
	return r
}

// Get returns the named Dataset, or nil if it is not registered.
func (r *Registry) Get(name string) *Dataset { return r.byName[name] }

// Names returns every registered Dataset name in load order.
func (r *Registry) Names() []string { return append([]string(nil), r.order...) }

// Primary returns the first-loaded Dataset, the one a single-file
// upload session exposes as its Session.Dataset.
func (r *Registry) Primary() *Dataset {
	if len(r.order) == 0 {
		return nil
	}
	return r.byName[r.order[0]]
}

// All returns every registered Dataset in load order.
func (r *Registry) All() []*Dataset {
	out := make([]*Dataset, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// detectRelationships runs name-based matching followed by value
// overlap confirmation for every foreign-key candidate against every
// other Dataset's primary key.
func (r *Registry) detectRelationships() {
	for _, source := range r.order {
		sd := r.byName[source]
		sd.Relationships = nil
		for _, fkCol := range sd.PotentialForeignKeys {
			target := r.findTargetDataset(source, fkCol)
			if target == nil || target.PrimaryKey == "" {
				continue
			}
			kind, confidence := classifyRelationship(sd, fkCol, target, target.PrimaryKey)
			if kind == "" {
				continue
			}
			rel := Relationship{
				Kind:              kind,
				SourceColumn:      fkCol,
				TargetDataset:     target.Name,
				TargetColumn:      target.PrimaryKey,
				OverlapConfidence: confidence,
			}
			sd.Relationships = append(sd.Relationships, rel)
			if issue := CheckOrphans(sd, rel, target); issue != nil {
				sd.QualityIssues = append(sd.QualityIssues, *issue)
			}
		}
	}
}

// findTargetDataset matches a foreign-key column's stem against other
// registered Dataset names, directly or after singularizing either
// side, e.g. "cliente_id" matches Dataset "clientes".
func (r *Registry) findTargetDataset(sourceName, fkCol string) *Dataset {
	stem := foreignKeyTargetStem(fkCol)
	var best *Dataset
	for _, name := range r.order {
		if name == sourceName {
			continue
		}
		lower := strings.ToLower(name)
		if lower == stem || singularize(lower) == stem || lower == stem+"s" {
			best = r.byName[name]
			break
		}
	}
	return best
}

// classifyRelationship determines whether a name match is confirmed
// by value overlap ≥ overlapThreshold (RelationshipInferred) or
// remains a bare name match with no supporting data (RelationshipDeclared).
func classifyRelationship(source *Dataset, fkCol string, target *Dataset, pkCol string) (RelationshipKind, float64) {
	pkValues := make(map[string]bool, target.RowCount())
	for _, row := range target.Rows {
		pkValues[toStringKey(row[pkCol])] = true
	}

	total, matched := 0, 0
	for _, row := range source.Rows {
		v := row[fkCol]
		if isNull(v) {
			continue
		}
		total++
		if pkValues[toStringKey(v)] {
			matched++
		}
	}

	if total == 0 {
		return RelationshipDeclared, 0
	}
	confidence := float64(matched) / float64(total)
	if confidence >= overlapThreshold {
		return RelationshipInferred, confidence
	}
	return "", 0
}
