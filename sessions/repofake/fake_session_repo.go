package repofake

import (
	"sync"

	"github.com/jrsteele09/go-hospital-client/sessions"
)

var _ sessions.Repo = (*FakeSessionRepo)(nil)

// FakeSessionRepo is an in-memory session store. Setting GetErr, SetErr or
// DeleteErr makes the matching call fail.
type FakeSessionRepo struct {
	entries map[string]string
	lock    sync.RWMutex

	GetErr    error
	SetErr    error
	DeleteErr error
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{
		entries: make(map[string]string),
	}
}

func (r *FakeSessionRepo) Get(key string) (string, bool, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	if r.GetErr != nil {
		return "", false, r.GetErr
	}
	v, ok := r.entries[key]
	return v, ok, nil
}

func (r *FakeSessionRepo) Set(key, value string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.SetErr != nil {
		return r.SetErr
	}
	r.entries[key] = value
	return nil
}

func (r *FakeSessionRepo) Delete(key string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.DeleteErr != nil {
		return r.DeleteErr
	}
	delete(r.entries, key)
	return nil
}

// Keys returns the number of stored entries.
func (r *FakeSessionRepo) Keys() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.entries)
}
