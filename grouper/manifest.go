package grouper

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/metrico/dvgrouper/loader"
	"github.com/metrico/dvgrouper/metadata"
	"github.com/metrico/dvgrouper/model"
)

type ManifestEntry struct {
	Name        string       `json:"name"`
	Group       string       `json:"group"`
	Path        string       `json:"path"`
	Format      string       `json:"format"`
	Rows        int64        `json:"rows"`
	YearsOfData []string     `json:"years_of_data"`
	TotalSize   *float64     `json:"total_size,omitempty"`
	SizeUnit    string       `json:"size_unit,omitempty"`
	IndexCol    *int         `json:"index_col"`
	Schema      model.Schema `json:"schema"`
	SchemaID    string       `json:"schema_id"`
}

// Manifest records what one load produced.
type Manifest struct {
	LoadID     string
	CreatedAt  int64
	Unexpected []string
	Datasets   []ManifestEntry
}

func (g *Grouper) Manifest() *Manifest {
	m := &Manifest{
		LoadID:     g.LoadID(),
		CreatedAt:  time.Now().UnixMilli(),
		Unexpected: g.Unexpected(),
	}
	for _, e := range g.entries() {
		me := ManifestEntry{
			Name:        e.Name,
			Group:       e.Group,
			Path:        e.Path(),
			Format:      e.Format(),
			Rows:        e.Rows(),
			YearsOfData: e.YearsOfData(),
			SizeUnit:    metadata.String(e.Meta, metadata.KeySizeUnit),
			Schema:      e.Schema(),
			SchemaID:    e.SchemaID(),
		}
		if total, ok := e.TotalSize(); ok {
			me.TotalSize = &total
		}
		if idx, ok := e.IndexCol(); ok {
			me.IndexCol = &idx
		}
		m.Datasets = append(m.Datasets, me)
	}
	return m
}

// entries lists every loaded entry ordered by group, then name.
func (g *Grouper) entries() []*loader.Entry {
	var res []*loader.Entry
	for _, group := range g.groups.GroupNames() {
		datasets := g.groups[group]
		names := make([]string, 0, len(datasets))
		for n := range datasets {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			res = append(res, datasets[n])
		}
	}
	return res
}

func (m *Manifest) Write(w io.Writer) error {
	stream := jsoniter.NewStream(jsoniter.ConfigDefault, w, 4096)

	stream.WriteObjectStart()
	stream.WriteObjectField("load_id")
	stream.WriteString(m.LoadID)

	stream.WriteMore()
	stream.WriteObjectField("created_at")
	stream.WriteInt64(m.CreatedAt)

	stream.WriteMore()
	stream.WriteObjectField("unexpected_files")
	stream.WriteArrayStart()
	for i, u := range m.Unexpected {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteString(u)
	}
	stream.WriteArrayEnd()

	stream.WriteMore()
	stream.WriteObjectField("datasets")
	stream.WriteArrayStart()
	for i, e := range m.Datasets {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteVal(e)
	}
	stream.WriteArrayEnd()
	stream.WriteObjectEnd()

	if stream.Error != nil {
		return stream.Error
	}
	return stream.Flush()
}

func ReadManifest(r io.Reader) (*Manifest, error) {
	m := &Manifest{}
	iter := jsoniter.Parse(jsoniter.ConfigDefault, r, 4096)
	iter.ReadMapCB(func(iterator *jsoniter.Iterator, s string) bool {
		switch s {
		case "load_id":
			m.LoadID = iterator.ReadString()
		case "created_at":
			m.CreatedAt = iterator.ReadInt64()
		case "unexpected_files":
			for iterator.ReadArray() {
				m.Unexpected = append(m.Unexpected, iterator.ReadString())
			}
		case "datasets":
			for iterator.ReadArray() {
				var e ManifestEntry
				iterator.ReadVal(&e)
				m.Datasets = append(m.Datasets, e)
			}
		default:
			iterator.Skip()
		}
		return true
	})
	if iter.Error != nil && iter.Error != io.EOF {
		return nil, fmt.Errorf("failed to read manifest: %w", iter.Error)
	}
	return m, nil
}

// SaveManifest writes the manifest next to path and renames it into place.
func (g *Grouper) SaveManifest(path string) error {
	tmp := path + ".bak"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err = g.Manifest().Write(f); err != nil {
		f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
