package models

import (
	"github.com/tauraamui/xerror"
	"github.com/vmihailenco/msgpack/v5"
)

func encode(v interface{}) ([]byte, error) {
	b, err := msgpack.Marshal(v)
	if err != nil {
		return nil, xerror.Errorf("unable to encode blob: %w", err)
	}
	return b, nil
}

func decode(b []byte, v interface{}) error {
	if len(b) == 0 {
		return nil
	}
	if err := msgpack.Unmarshal(b, v); err != nil {
		return xerror.Errorf("unable to decode blob: %w", err)
	}
	return nil
}
