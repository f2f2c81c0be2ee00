package sync

// Relevant reports whether a change touching the given fields has any
// representation on the CMS side and is therefore worth a remote round
// trip. A nil field list means the source did not say what changed
// (e.g. a variant update arriving directly from the variant service)
// and always propagates.
func Relevant(t EntityType, fields []string) bool {
	if fields == nil {
		return true
	}

	schema, ok := SchemaFor(t)
	if !ok {
		return false
	}

	allowed := make(map[string]struct{}, len(schema.SyncFields))
	for _, f := range schema.SyncFields {
		allowed[f] = struct{}{}
	}
	for _, f := range fields {
		if _, ok := allowed[f]; ok {
			return true
		}
	}
	return false
}
