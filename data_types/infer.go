package data_types

// InferColumn builds the narrowest column able to hold every value:
// int64, then float64, then string. Empty strings are nulls.
func InferColumn(name string, values []string) (IColumn, error) {
	for _, builder := range []ColumnBuilder{int64Builder, float64Builder} {
		col, err := fillColumn(builder, name, values)
		if err == nil {
			return col, nil
		}
	}
	return fillColumn(strBuilder, name, values)
}

func fillColumn(builder ColumnBuilder, name string, values []string) (IColumn, error) {
	col, err := builder(name, nil, int64(len(values)))
	if err != nil {
		return nil, err
	}
	for _, v := range values {
		if v == "" {
			col.AppendNulls(1)
			continue
		}
		if err := col.ParseFromStr(v); err != nil {
			return nil, err
		}
	}
	return col, nil
}
