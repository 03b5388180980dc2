package transliteration

// BuiltinDefinitions returns the definitions of the tables compiled into the
// binary, in detection-priority order.
func BuiltinDefinitions() []Definition {
	return []Definition{
		arabicDefinition(),
		devanagariDefinition(),
		hangulDefinition(),
		hanDefinition(),
	}
}

// BuiltinTables compiles BuiltinDefinitions. A failure here is a bug in the
// static data, so it panics.
func BuiltinTables() []*Table {
	defs := BuiltinDefinitions()
	tables := make([]*Table, len(defs))
	for i, def := range defs {
		tables[i] = MustCompile(def)
	}
	return tables
}
