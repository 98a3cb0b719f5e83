package catalog

// LectureID uniquely identifies a lecture.
type LectureID string

// CourseID uniquely identifies a course.
type CourseID string

// UserID identifies an authenticated viewer.
type UserID string

// Lecture describes a single video lecture within a course.
// JSON tags match the catalog seed file format.
type Lecture struct {
	ID         LectureID `json:"id"`
	CourseID   CourseID  `json:"course_id"`
	Title      string    `json:"title"`
	VideoURL   string    `json:"video_url"`
	IsPreview  bool      `json:"is_preview"`
	PreviewURL string    `json:"preview_url,omitempty"`
	OrderIndex int       `json:"order_index,omitempty"`
	Duration   int       `json:"duration,omitempty"` // seconds
}

// TargetURL returns the upstream asset URL a viewer should receive:
// the preview URL (falling back to the primary URL) for preview lectures,
// the primary URL otherwise. Empty means the lecture has no playable asset.
func (l Lecture) TargetURL() string {
	if l.IsPreview {
		if l.PreviewURL != "" {
			return l.PreviewURL
		}
	}
	return l.VideoURL
}

// Course describes the course a lecture belongs to.
type Course struct {
	ID       CourseID `json:"id"`
	Title    string   `json:"title"`
	IsActive bool     `json:"is_active"`
	IsPaid   bool     `json:"is_paid"`
	Price    int64    `json:"price,omitempty"`
}

// RequiresPurchase reports whether viewing non-preview lectures of this
// course requires an access grant. A course flagged paid but priced at
// zero is treated as free.
func (c Course) RequiresPurchase() bool {
	return c.IsPaid && c.Price > 0
}

// GrantStatus is the lifecycle state of an access grant.
type GrantStatus string

// GrantActive is the only status that authorizes streaming.
const GrantActive GrantStatus = "active"

// AccessGrant records that a user purchased (or was given) access to a course.
type AccessGrant struct {
	UserID   UserID      `json:"user_id"`
	CourseID CourseID    `json:"course_id"`
	Status   GrantStatus `json:"status"`
}
