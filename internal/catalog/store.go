package catalog

// Store is the persistence abstraction for catalog state.
// Implementations can be in-memory, file-based, or remote.
// The Repository uses Store for all reads and writes; callers of Repository
// do not need to know which Store is used.
type Store interface {
	GetLecture(id LectureID) (Lecture, bool)
	SetLecture(l Lecture)
	GetCourse(id CourseID) (Course, bool)
	SetCourse(c Course)
	GetGrant(userID UserID, courseID CourseID) (AccessGrant, bool)
	SetGrant(g AccessGrant)
}

type grantKey struct {
	userID   UserID
	courseID CourseID
}

// InMemoryStore is an in-memory implementation of Store.
type InMemoryStore struct {
	lectures map[LectureID]Lecture
	courses  map[CourseID]Course
	grants   map[grantKey]AccessGrant
}

// NewInMemoryStore returns a new empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		lectures: make(map[LectureID]Lecture),
		courses:  make(map[CourseID]Course),
		grants:   make(map[grantKey]AccessGrant),
	}
}

// GetLecture implements Store.GetLecture.
func (s *InMemoryStore) GetLecture(id LectureID) (Lecture, bool) {
	l, ok := s.lectures[id]
	return l, ok
}

// SetLecture implements Store.SetLecture.
func (s *InMemoryStore) SetLecture(l Lecture) {
	s.lectures[l.ID] = l
}

// GetCourse implements Store.GetCourse.
func (s *InMemoryStore) GetCourse(id CourseID) (Course, bool) {
	c, ok := s.courses[id]
	return c, ok
}

// SetCourse implements Store.SetCourse.
func (s *InMemoryStore) SetCourse(c Course) {
	s.courses[c.ID] = c
}

// GetGrant implements Store.GetGrant.
func (s *InMemoryStore) GetGrant(userID UserID, courseID CourseID) (AccessGrant, bool) {
	g, ok := s.grants[grantKey{userID, courseID}]
	return g, ok
}

// SetGrant implements Store.SetGrant.
func (s *InMemoryStore) SetGrant(g AccessGrant) {
	s.grants[grantKey{g.UserID, g.CourseID}] = g
}
