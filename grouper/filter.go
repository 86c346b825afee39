package grouper

import (
	"fmt"
	"sort"

	"github.com/expr-lang/expr"

	"github.com/metrico/dvgrouper/loader"
	"github.com/metrico/dvgrouper/metadata"
)

// Env is the environment of Filter expressions, e.g.
// `rows > 10 && 2020 in years && format == ".parquet"`.
type Env struct {
	Name      string   `expr:"name"`
	Group     string   `expr:"group"`
	Path      string   `expr:"path"`
	Format    string   `expr:"format"`
	Years     []int    `expr:"years"`
	Ranges    []string `expr:"ranges"`
	TotalSize float64  `expr:"total_size"`
	Rows      int64    `expr:"rows"`
	Columns   []string `expr:"columns"`
	SchemaID  string   `expr:"schema_id"`
}

func envOf(e *loader.Entry) (Env, error) {
	years, err := metadata.ExpandRanges(e.YearsOfData())
	if err != nil {
		return Env{}, err
	}
	total, _ := e.TotalSize()
	cols := make([]string, 0, len(e.Schema()))
	for c := range e.Schema() {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return Env{
		Name:      e.Name,
		Group:     e.Group,
		Path:      e.Path(),
		Format:    e.Format(),
		Years:     years,
		Ranges:    e.YearsOfData(),
		TotalSize: total,
		Rows:      e.Rows(),
		Columns:   cols,
		SchemaID:  e.SchemaID(),
	}, nil
}

// Filter returns the sorted names of the datasets matching expression.
func (g *Grouper) Filter(expression string) ([]string, error) {
	program, err := expr.Compile(expression, expr.Env(Env{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid filter %q: %w", expression, err)
	}
	var res []string
	for _, name := range g.names {
		env, err := envOf(g.datasets[name])
		if err != nil {
			return nil, err
		}
		out, err := expr.Run(program, env)
		if err != nil {
			return nil, fmt.Errorf("filter %q on %q: %w", expression, name, err)
		}
		if out.(bool) {
			res = append(res, name)
		}
	}
	return res, nil
}
