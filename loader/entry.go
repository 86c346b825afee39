package loader

import (
	"sort"

	"github.com/metrico/dvgrouper/frame"
	"github.com/metrico/dvgrouper/metadata"
	"github.com/metrico/dvgrouper/model"
)

// Entry is one loaded dataset. Meta holds the frame under "data" next to
// the derived metadata.
type Entry struct {
	Group string
	Name  string
	Meta  metadata.Data
}

func (e *Entry) Frame() *frame.Frame {
	f, _ := metadata.Get[*frame.Frame](e.Meta, metadata.KeyData)
	return f
}

func (e *Entry) YearsOfData() []string { return metadata.Years(e.Meta) }

func (e *Entry) TotalSize() (float64, bool) { return metadata.TotalSize(e.Meta) }

func (e *Entry) IndexCol() (int, bool) { return metadata.IndexCol(e.Meta) }

func (e *Entry) Schema() model.Schema { return metadata.SchemaOf(e.Meta) }

func (e *Entry) Path() string { return metadata.String(e.Meta, metadata.KeyPath) }

func (e *Entry) Format() string { return metadata.String(e.Meta, metadata.KeyFormat) }

func (e *Entry) SchemaID() string { return metadata.String(e.Meta, metadata.KeySchemaID) }

func (e *Entry) Rows() int64 { return metadata.Rows(e.Meta) }

// Metadata returns the entry metadata without the frame.
func (e *Entry) Metadata() metadata.Data {
	return e.Meta.Without(metadata.KeyData)
}

// Groups maps a group name to the datasets loaded from that directory.
type Groups map[string]map[string]*Entry

func (g Groups) entry(group, name string) (*Entry, bool) {
	e, ok := g[group][name]
	return e, ok
}

func (g Groups) put(e *Entry) {
	if g[e.Group] == nil {
		g[e.Group] = map[string]*Entry{}
	}
	g[e.Group][e.Name] = e
}

// Names returns the distinct dataset names of all groups, sorted.
func (g Groups) Names() []string {
	seen := map[string]bool{}
	var res []string
	for _, datasets := range g {
		for name := range datasets {
			if !seen[name] {
				seen[name] = true
				res = append(res, name)
			}
		}
	}
	sort.Strings(res)
	return res
}

// Lookup returns every entry called name, ordered by group.
func (g Groups) Lookup(name string) []*Entry {
	var res []*Entry
	for _, group := range g.GroupNames() {
		if e, ok := g[group][name]; ok {
			res = append(res, e)
		}
	}
	return res
}

func (g Groups) GroupNames() []string {
	res := make([]string, 0, len(g))
	for k := range g {
		res = append(res, k)
	}
	sort.Strings(res)
	return res
}

// Len counts the entries of all groups.
func (g Groups) Len() int {
	n := 0
	for _, datasets := range g {
		n += len(datasets)
	}
	return n
}

func (g Groups) Release() {
	for _, datasets := range g {
		for _, e := range datasets {
			if f := e.Frame(); f != nil {
				f.Release()
			}
		}
	}
}
