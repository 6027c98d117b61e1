package repos

import (
	"encoding/json"

	"github.com/pkg/errors"
)

func decode[T any](name string, records []json.RawMessage) ([]T, error) {
	out := make([]T, 0, len(records))
	for _, rec := range records {
		var v T
		if err := json.Unmarshal(rec, &v); err != nil {
			return nil, errors.Wrapf(err, "decode %s record", name)
		}
		out = append(out, v)
	}
	return out, nil
}

func encode[T any](name string, list []T) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(list))
	for _, v := range list {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, errors.Wrapf(err, "encode %s record", name)
		}
		out = append(out, b)
	}
	return out, nil
}
