// Package store persists command state between runs.
//
// Values are encoded with msgpack inside a small versioned envelope and
// written atomically (temp file + rename).
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// Version is the envelope format written by Save.
const Version = 1

type envelope[T any] struct {
	Version int `msgpack:"v"`
	Value   T   `msgpack:"value"`
}

// Save writes v to path.
func Save[T any](path string, v T) error {
	packed, err := msgpack.Marshal(envelope[T]{Version: Version, Value: v})
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(packed); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// Load reads a value written by Save. It returns ok=false and no error when
// the file does not exist.
func Load[T any](path string) (v T, ok bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return v, false, nil
		}
		return v, false, err
	}

	var env envelope[T]
	if err := msgpack.Unmarshal(data, &env); err != nil {
		return v, false, fmt.Errorf("decode %s: %w", path, err)
	}
	if env.Version != Version {
		return v, false, fmt.Errorf("decode %s: unsupported version %d", path, env.Version)
	}
	return env.Value, true, nil
}
