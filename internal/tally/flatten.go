package tally

// Record is one flattened entity instance. Values are strings as exported by
// Tally, or nil when the field is absent. Numeric coercion is the caller's
// business.
type Record = map[string]any

// Flatten produces one record per element matching tag, anywhere in the tree.
// Missing fields become nil. No matches is not an error, the result is simply
// empty; callers that care must check the count.
func Flatten(root *Node, tag string, fields FieldSet) []Record {
	records := []Record{}

	for _, el := range root.FindAll(tag) {
		records = append(records, flattenOne(el, fields))
	}

	return records
}

func flattenOne(el *Node, fields FieldSet) Record {
	record := make(Record, len(fields))

	for _, f := range fields {
		if text, ok := el.Text(f.Tag); ok {
			record[f.Key] = text
		} else {
			record[f.Key] = nil
		}
	}

	return record
}
