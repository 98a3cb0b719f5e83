package proxy

import (
	"errors"

	"stream-proxy/internal/catalog"
)

// ErrLectureNotFound is returned when the lecture does not exist.
var ErrLectureNotFound = errors.New("lecture not found")

// ErrCourseNotFound is returned when the owning course does not exist or is
// inactive.
var ErrCourseNotFound = errors.New("course not found")

// Gate decides whether a principal may view a lecture's asset. It runs before
// any upstream connection is opened: a denied request costs zero upstream
// bandwidth.
type Gate struct {
	repo catalog.Repository
}

// NewGate returns a Gate backed by the given catalog.
func NewGate(repo catalog.Repository) *Gate {
	return &Gate{repo: repo}
}

// Decide evaluates access for userID (empty for anonymous viewers) to the
// given lecture. Allowed when the lecture is a preview, the course is free,
// or the viewer holds an active access grant. The decision's target URL is
// the preview URL (falling back to the primary URL) for previews, else the
// primary URL; it is empty when the lecture has no playable asset, which the
// caller must reject separately since no credential can cure it.
func (g *Gate) Decide(lectureID catalog.LectureID, userID catalog.UserID) (AccessDecision, error) {
	lecture, ok := g.repo.GetLecture(lectureID)
	if !ok {
		return AccessDecision{}, ErrLectureNotFound
	}
	course, ok := g.repo.GetCourse(lecture.CourseID)
	if !ok || !course.IsActive {
		return AccessDecision{}, ErrCourseNotFound
	}

	decision := AccessDecision{
		TargetURL:     lecture.TargetURL(),
		Authenticated: userID != "",
	}

	allowed := lecture.IsPreview || !course.RequiresPurchase()
	if !allowed && decision.Authenticated {
		allowed = g.repo.HasActiveAccess(userID, course.ID)
	}
	decision.Allowed = allowed

	return decision, nil
}
