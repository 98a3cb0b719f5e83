package catalog

import (
	"sync"
)

// Repository defines the concurrency-safe contract the streaming proxy uses to
// look up lectures, courses, and access grants. It is the narrow boundary to
// the rest of the course platform: the proxy only ever reads through it.
type Repository interface {
	// GetLecture returns the lecture with the given ID. ok is false if it
	// does not exist.
	GetLecture(id LectureID) (Lecture, bool)

	// GetCourse returns the course with the given ID. ok is false if it
	// does not exist.
	GetCourse(id CourseID) (Course, bool)

	// HasActiveAccess reports whether the user holds an active access grant
	// for the course.
	HasActiveAccess(userID UserID, courseID CourseID) bool

	// PutLecture inserts or replaces a lecture.
	PutLecture(l Lecture)

	// PutCourse inserts or replaces a course.
	PutCourse(c Course)

	// GrantAccess records an active access grant for (user, course).
	// Granting twice is idempotent.
	GrantAccess(userID UserID, courseID CourseID)
}

// InMemoryRepository is a concurrency-safe in-memory implementation of
// Repository. It uses a Store for persistence; by default that is an
// InMemoryStore.
type InMemoryRepository struct {
	mu    sync.RWMutex
	store Store
}

// NewInMemoryRepository constructs a new repository with a default in-memory store.
func NewInMemoryRepository() *InMemoryRepository {
	return NewInMemoryRepositoryWithStore(NewInMemoryStore())
}

// NewInMemoryRepositoryWithStore constructs a repository that uses the given Store.
// Useful for testing or for plugging in a different persistence backend.
func NewInMemoryRepositoryWithStore(store Store) *InMemoryRepository {
	return &InMemoryRepository{store: store}
}

// GetLecture implements Repository.GetLecture.
func (r *InMemoryRepository) GetLecture(id LectureID) (Lecture, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.store.GetLecture(id)
}

// GetCourse implements Repository.GetCourse.
func (r *InMemoryRepository) GetCourse(id CourseID) (Course, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.store.GetCourse(id)
}

// HasActiveAccess implements Repository.HasActiveAccess.
func (r *InMemoryRepository) HasActiveAccess(userID UserID, courseID CourseID) bool {
	if userID == "" {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.store.GetGrant(userID, courseID)
	return ok && g.Status == GrantActive
}

// PutLecture implements Repository.PutLecture.
func (r *InMemoryRepository) PutLecture(l Lecture) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store.SetLecture(l)
}

// PutCourse implements Repository.PutCourse.
func (r *InMemoryRepository) PutCourse(c Course) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store.SetCourse(c)
}

// GrantAccess implements Repository.GrantAccess.
func (r *InMemoryRepository) GrantAccess(userID UserID, courseID CourseID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store.SetGrant(AccessGrant{UserID: userID, CourseID: courseID, Status: GrantActive})
}
