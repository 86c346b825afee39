package grouper

import (
	"sort"

	"github.com/go-faster/jx"

	"github.com/metrico/dvgrouper/loader"
)

// EncodeDatasets writes a JSON array describing the named datasets, or all
// datasets when names is empty.
func (g *Grouper) EncodeDatasets(e *jx.Encoder, names ...string) {
	if len(names) == 0 {
		names = g.names
	}
	e.ArrStart()
	for _, n := range names {
		if entry, ok := g.datasets[n]; ok {
			encodeEntry(e, entry)
		}
	}
	e.ArrEnd()
}

func encodeEntry(e *jx.Encoder, entry *loader.Entry) {
	e.ObjStart()
	e.FieldStart("name")
	e.Str(entry.Name)
	e.FieldStart("group")
	e.Str(entry.Group)
	e.FieldStart("path")
	e.Str(entry.Path())
	e.FieldStart("format")
	e.Str(entry.Format())
	e.FieldStart("rows")
	e.Int64(entry.Rows())
	e.FieldStart("years_of_data")
	e.ArrStart()
	for _, y := range entry.YearsOfData() {
		e.Str(y)
	}
	e.ArrEnd()
	if total, ok := entry.TotalSize(); ok {
		e.FieldStart("total_size")
		e.Float64(total)
	}
	e.FieldStart("index_col")
	if idx, ok := entry.IndexCol(); ok {
		e.Int(idx)
	} else {
		e.Null()
	}
	e.FieldStart("schema_id")
	e.Str(entry.SchemaID())

	schema := entry.Schema()
	cols := make([]string, 0, len(schema))
	for c := range schema {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	e.FieldStart("columns")
	e.ArrStart()
	for _, c := range cols {
		e.ObjStart()
		e.FieldStart("name")
		e.Str(c)
		e.FieldStart("type")
		e.Str(schema[c].Type)
		if size := schema[c].Size; size != nil {
			e.FieldStart("size")
			e.Float64(*size)
		}
		e.ObjEnd()
	}
	e.ArrEnd()
	e.ObjEnd()
}
