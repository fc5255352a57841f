package video

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RefPrefix marks references that resolve through an ObjectStore.
const RefPrefix = "object:"

// Object is a downloaded binary held for playback.
type Object struct {
	Data      []byte
	MIMEType  string
	CreatedAt time.Time
}

// ObjectStore holds downloaded videos in memory until they are released.
type ObjectStore struct {
	mu      sync.RWMutex
	objects map[string]Object
}

func NewObjectStore() *ObjectStore {
	return &ObjectStore{objects: map[string]Object{}}
}

// Put stores data and returns its object reference.
func (s *ObjectStore) Put(data []byte, mime string) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.objects[id] = Object{Data: data, MIMEType: mime, CreatedAt: time.Now().UTC()}
	s.mu.Unlock()
	return RefPrefix + id
}

// Get accepts either a full reference or a bare object id.
func (s *ObjectStore) Get(ref string) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[ObjectID(ref)]
	return obj, ok
}

// Release drops the object and reports whether it existed.
func (s *ObjectStore) Release(ref string) bool {
	id := ObjectID(ref)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[id]; !ok {
		return false
	}
	delete(s.objects, id)
	return true
}

func (s *ObjectStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// ObjectID strips the reference prefix.
func ObjectID(ref string) string {
	return strings.TrimPrefix(strings.TrimSpace(ref), RefPrefix)
}

// IsRef reports whether ref points into an ObjectStore.
func IsRef(ref string) bool {
	return strings.HasPrefix(ref, RefPrefix)
}
