//go:build !tinygo

package hal

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"boardlet/internal/codec"
)

const (
	// StoreKeys bounds the key space of the store.
	StoreKeys = 4096
	// StoreValueMax is the largest value the store accepts.
	StoreValueMax = 1023
)

// hostStore keeps every entry in memory and rewrites the whole CBOR file
// on each mutation.
type hostStore struct {
	mu      sync.Mutex
	path    string
	entries map[uint16][]byte
}

func openHostStore(path string) (*hostStore, error) {
	s := &hostStore{path: path, entries: make(map[uint16][]byte)}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("store: read %s: %w", path, err)
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := codec.Unmarshal(data, &s.entries); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", path, err)
	}
	return s, nil
}

func (s *hostStore) Supported() bool { return true }

func (s *hostStore) Insert(key uint16, value []byte) error {
	if key >= StoreKeys {
		return Errorf(SpaceUser, CodeInvalidArgument, "store key %d", key)
	}
	if len(value) > StoreValueMax {
		return Errorf(SpaceUser, CodeInvalidLength, "store value of %d bytes", len(value))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.entries[key]
	s.entries[key] = bytes.Clone(value)
	if err := s.flush(); err != nil {
		if had {
			s.entries[key] = prev
		} else {
			delete(s.entries, key)
		}
		return err
	}
	return nil
}

func (s *hostStore) Remove(key uint16) error {
	if key >= StoreKeys {
		return Errorf(SpaceUser, CodeInvalidArgument, "store key %d", key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.entries[key]
	if !had {
		return nil
	}
	delete(s.entries, key)
	if err := s.flush(); err != nil {
		s.entries[key] = prev
		return err
	}
	return nil
}

func (s *hostStore) Find(key uint16) ([]byte, error) {
	if key >= StoreKeys {
		return nil, Errorf(SpaceUser, CodeInvalidArgument, "store key %d", key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	return append([]byte{}, v...), nil
}

func (s *hostStore) flush() error {
	data, err := codec.Marshal(s.entries)
	if err != nil {
		return &Error{Space: SpaceInternal, Code: CodeGeneric, Msg: err.Error()}
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".store-*")
	if err != nil {
		return &Error{Space: SpaceWorld, Code: CodeGeneric, Msg: err.Error()}
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return &Error{Space: SpaceWorld, Code: CodeGeneric, Msg: err.Error()}
	}
	if err := tmp.Close(); err != nil {
		return &Error{Space: SpaceWorld, Code: CodeGeneric, Msg: err.Error()}
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return &Error{Space: SpaceWorld, Code: CodeGeneric, Msg: err.Error()}
	}
	return nil
}
