package catalog

import (
	"encoding/json"
	"fmt"
	"os"
)

// SeedFile is the JSON document format for seeding a repository: the course
// and lecture records the proxy needs, plus any pre-existing access grants.
type SeedFile struct {
	Courses  []Course      `json:"courses"`
	Lectures []Lecture     `json:"lectures"`
	Grants   []AccessGrant `json:"grants,omitempty"`
}

// LoadFile reads a SeedFile from path and inserts its records into repo.
// Grants without an explicit status default to active.
func LoadFile(path string, repo Repository) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read catalog file: %w", err)
	}
	return LoadJSON(data, repo)
}

// LoadJSON inserts the records of a JSON-encoded SeedFile into repo.
func LoadJSON(data []byte, repo Repository) error {
	var f SeedFile
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("decode catalog file: %w", err)
	}

	for _, c := range f.Courses {
		if c.ID == "" {
			return fmt.Errorf("catalog course %q missing id", c.Title)
		}
		repo.PutCourse(c)
	}
	for _, l := range f.Lectures {
		if l.ID == "" || l.CourseID == "" {
			return fmt.Errorf("catalog lecture %q missing id or course_id", l.Title)
		}
		repo.PutLecture(l)
	}
	for _, g := range f.Grants {
		if g.Status == "" || g.Status == GrantActive {
			repo.GrantAccess(g.UserID, g.CourseID)
		}
	}
	return nil
}
