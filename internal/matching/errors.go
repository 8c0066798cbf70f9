package matching

import "errors"

var (
	// ErrNoCareers is returned by Recommend for an empty catalog.
	// It is distinct from a catalog that simply has no good matches.
	ErrNoCareers = errors.New("no careers available")

	// ErrCareerNotFound is returned by SkillGap for an unknown career name.
	ErrCareerNotFound = errors.New("career not found")
)
