package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrNoCourse is returned when no usable course catalog is available.
var ErrNoCourse = errors.New("course catalog is missing or empty")

//go:embed demo_course.yaml
var demoCourse []byte

// LoadCourse reads a course catalog from a YAML or JSON file.
func LoadCourse(path string) (*Course, error) {
	if path == "" {
		return nil, ErrNoCourse
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read course %s: %w", path, err)
	}
	return ParseCourse(data)
}

// ParseCourse decodes and validates a course catalog. JSON input is
// accepted since it is valid YAML.
func ParseCourse(data []byte) (*Course, error) {
	var c Course
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse course: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// DemoCourse returns the bundled sample course.
func DemoCourse() *Course {
	c, err := ParseCourse(demoCourse)
	if err != nil {
		panic(fmt.Sprintf("embedded demo course is invalid: %v", err))
	}
	return c
}

// Validate checks the catalog is usable for simulation.
func (c *Course) Validate() error {
	if c == nil || c.ID == "" {
		return fmt.Errorf("%w: course id is required", ErrNoCourse)
	}
	acts := c.Activities()
	if len(acts) == 0 {
		return fmt.Errorf("%w: course %q has no activities", ErrNoCourse, c.ID)
	}
	seen := make(map[string]bool, len(acts))
	for _, a := range acts {
		if a.ID == "" {
			return fmt.Errorf("activity %q: id is required", a.Title)
		}
		if seen[a.ID] {
			return fmt.Errorf("activity %q: duplicate id", a.ID)
		}
		seen[a.ID] = true
		if a.EstimatedDuration <= 0 {
			return fmt.Errorf("activity %q: estimatedDuration must be positive", a.ID)
		}
		for name, v := range map[string]float64{
			"difficulty":  a.Difficulty,
			"probability": a.Probability,
			"rating":      a.Rating,
		} {
			if v < 0 || v > 1 {
				return fmt.Errorf("activity %q: %s %.2f outside [0,1]", a.ID, name, v)
			}
		}
	}
	return nil
}
