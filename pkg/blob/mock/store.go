package mock

import (
	"context"
	"sync"

	"github.com/opst/knitlabel/pkg/blob"
	xe "github.com/opst/knitlabel/pkg/errors"
)

// Store is an in-memory blob.Store.
//
// Links are "mem://{organization}/{key}" (+ "?upload" for UploadLink).
type Store struct {
	mux     sync.Mutex
	objects map[string][]byte

	// Err, when set, is returned from every method.
	Err error

	// Puts and Deletes are keys written and deleted, in "{organization}/{key}" form.
	Puts    []string
	Deletes []string
}

var _ blob.Store = &Store{}

func New() *Store {
	return &Store{objects: map[string][]byte{}}
}

func path(organization, key string) string {
	return organization + "/" + key
}

// Objects returns a snapshot of stored objects, keyed by "{organization}/{key}".
func (s *Store) Objects() map[string][]byte {
	s.mux.Lock()
	defer s.mux.Unlock()
	snap := make(map[string][]byte, len(s.objects))
	for k, v := range s.objects {
		snap[k] = v
	}
	return snap
}

// Preset stores an object without recording it as a Put.
func (s *Store) Preset(organization, key string, data []byte) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.objects[path(organization, key)] = data
}

func (s *Store) Put(_ context.Context, organization string, key string, data []byte) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Puts = append(s.Puts, path(organization, key))
	s.objects[path(organization, key)] = data
	return nil
}

func (s *Store) Get(_ context.Context, organization string, key string) ([]byte, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	data, ok := s.objects[path(organization, key)]
	if !ok {
		return nil, xe.WrapWithNote(path(organization, key), blob.ErrNotFound)
	}
	return data, nil
}

func (s *Store) Delete(_ context.Context, organization string, key string) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Deletes = append(s.Deletes, path(organization, key))
	delete(s.objects, path(organization, key))
	return nil
}

func (s *Store) Exists(_ context.Context, organization string, key string) (bool, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	_, ok := s.objects[path(organization, key)]
	return ok, nil
}

func (s *Store) AccessLink(_ context.Context, organization string, key string) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	return "mem://" + path(organization, key), nil
}

func (s *Store) UploadLink(_ context.Context, organization string, key string) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	return "mem://" + path(organization, key) + "?upload", nil
}
