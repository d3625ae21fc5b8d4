package schema

// ExternalizeRelationTarget rewrites a relation field's target from a numeric
// collection id to its slug for portable documents. A target missing from the
// map is left as the numeric id; the document still round-trips, the
// reference just stays unresolvable.
func ExternalizeRelationTarget(opts *FieldOptions, slugByID map[int64]string) {
	if opts == nil || opts.Relation == nil {
		return
	}
	if slug, ok := slugByID[opts.Relation.Collection.ID]; ok {
		opts.Relation.Collection = CollectionRef{Slug: slug}
	}
}

// InternalizeRelationTarget is the import-side inverse: slug back to the
// freshly assigned numeric id. Unknown slugs are passed through untouched.
func InternalizeRelationTarget(opts *FieldOptions, idBySlug map[string]int64) {
	if opts == nil || opts.Relation == nil {
		return
	}
	if id, ok := idBySlug[opts.Relation.Collection.Slug]; ok {
		opts.Relation.Collection = CollectionRef{ID: id}
	}
}
