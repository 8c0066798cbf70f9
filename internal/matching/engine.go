package matching

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"strings"

	"github.com/jonathan/career-guidance/internal/types"
)

const (
	// skillWeight is the share of the score earned by matching every required skill
	skillWeight = 70.0
	// interestBonus is added when an interest overlaps the career's category or name
	interestBonus = 30

	topCareers        = 3
	learningPathLimit = 5
	resourcesPerSkill = 2

	highPriorityCount   = 3
	mediumPriorityCount = 2

	timeHighPriority  = "1-2 months"
	timeOtherPriority = "2-3 months"

	searchURLPrefix = "https://www.youtube.com/results?search_query="
)

// Engine scores careers and builds recommendations. It holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	matcher SkillMatcher
}

// Option configures an Engine
type Option func(*Engine)

// WithMatcher replaces the default SubstringMatcher
func WithMatcher(m SkillMatcher) Option {
	return func(e *Engine) {
		if m != nil {
			e.matcher = m
		}
	}
}

// NewEngine creates an Engine. Without options it uses SubstringMatcher.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{matcher: SubstringMatcher{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// profile is a UserProfile with its tokens normalized and blanks dropped
type profile struct {
	skills    []string
	interests []string
}

func newProfile(u types.UserProfile) profile {
	return profile{skills: normalizeAll(u.Skills), interests: normalizeAll(u.Interests)}
}

func normalizeAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if n := Normalize(s); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// requirement is a required skill in declared form plus its normalized token
type requirement struct {
	display string
	token   string
}

// requirements returns a career's required skills in declared order without
// blanks. Repeated skills are kept: each declaration counts toward the score.
func requirements(c *types.Career) []requirement {
	out := make([]requirement, 0, len(c.RequiredSkills))
	for _, s := range c.RequiredSkills {
		if tok := Normalize(s); tok != "" {
			out = append(out, requirement{display: strings.TrimSpace(s), token: tok})
		}
	}
	return out
}

func (e *Engine) holds(p profile, required string) bool {
	for _, s := range p.skills {
		if e.matcher.Match(s, required) {
			return true
		}
	}
	return false
}

func interestAligned(p profile, c *types.Career) bool {
	category := Normalize(c.Category)
	name := Normalize(c.Name)
	for _, i := range p.interests {
		if overlaps(i, category) || overlaps(i, name) {
			return true
		}
	}
	return false
}

// ScoreCareer scores one career for one user. The score is an integer in
// [0, 100]: up to 70 for the fraction of required skills held plus 30 when an
// interest overlaps the career's category or name. A career without required
// skills contributes nothing from skills.
func (e *Engine) ScoreCareer(user types.UserProfile, career types.Career) types.MatchResult {
	return e.score(newProfile(user), &career)
}

func (e *Engine) score(p profile, c *types.Career) types.MatchResult {
	reqs := requirements(c)
	matched := 0
	for _, r := range reqs {
		if e.holds(p, r.token) {
			matched++
		}
	}

	var contribution float64
	if len(reqs) > 0 {
		contribution = float64(matched) / float64(len(reqs)) * skillWeight
	}

	aligned := interestAligned(p, c)
	score := int(math.Round(contribution))
	if aligned {
		score += interestBonus
	}

	return types.MatchResult{
		CareerName:      c.Name,
		Score:           score,
		MatchingSkills:  matched,
		InterestAligned: aligned,
	}
}

type rankedCareer struct {
	career *types.Career
	result types.MatchResult
}

// Rank scores every career and orders them by descending score. Equal scores
// keep catalog order, so the caller's catalog order is the tie-break contract.
func (e *Engine) Rank(user types.UserProfile, catalog []types.Career) []types.MatchResult {
	ranked := e.rank(newProfile(user), catalog)
	out := make([]types.MatchResult, len(ranked))
	for i, r := range ranked {
		out[i] = r.result
	}
	return out
}

func (e *Engine) rank(p profile, catalog []types.Career) []rankedCareer {
	ranked := make([]rankedCareer, len(catalog))
	for i := range catalog {
		ranked[i] = rankedCareer{career: &catalog[i], result: e.score(p, &catalog[i])}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].result.Score > ranked[j].result.Score
	})
	return ranked
}

// Recommend ranks the catalog and returns the top three careers, the skills
// they require that the user lacks, and a learning path for the first five
// of those skills. The result is deterministic for a given input.
func (e *Engine) Recommend(user types.UserProfile, catalog []types.Career) (*types.Recommendation, error) {
	if len(catalog) == 0 {
		return nil, ErrNoCareers
	}

	p := newProfile(user)
	ranked := e.rank(p, catalog)
	top := ranked[:min(topCareers, len(ranked))]

	suggested := make([]types.SuggestedCareer, 0, len(top))
	for _, r := range top {
		suggested = append(suggested, types.SuggestedCareer{
			CareerID:   r.career.ID,
			CareerName: r.career.Name,
			MatchScore: r.result.Score,
			Reason:     reason(r.result),
		})
	}

	missing := e.missingSkills(p, top)

	return &types.Recommendation{
		SuggestedCareers: suggested,
		MissingSkills:    missing,
		LearningPath:     learningPath(missing, catalog),
	}, nil
}

func reason(r types.MatchResult) string {
	s := fmt.Sprintf("Matches %d of your skills", r.MatchingSkills)
	if r.InterestAligned {
		s += " and aligns with your interests"
	}
	return s
}

type missingEntry struct {
	display string
	related []string
}

// missingSkills unions the required skills of the top careers, drops the ones
// the user holds and orders the rest by how many top careers need them.
func (e *Engine) missingSkills(p profile, top []rankedCareer) []types.MissingSkill {
	index := make(map[string]int)
	var entries []*missingEntry

	for _, r := range top {
		for _, req := range requirements(r.career) {
			if e.holds(p, req.token) {
				continue
			}
			i, ok := index[req.token]
			if !ok {
				i = len(entries)
				index[req.token] = i
				entries = append(entries, &missingEntry{display: req.display})
			}
			// a career repeating a skill still counts once toward its priority
			if rel := entries[i].related; len(rel) > 0 && rel[len(rel)-1] == r.career.Name {
				continue
			}
			entries[i].related = append(entries[i].related, r.career.Name)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return len(entries[i].related) > len(entries[j].related)
	})

	out := make([]types.MissingSkill, 0, len(entries))
	for _, m := range entries {
		out = append(out, types.MissingSkill{
			Skill:          m.display,
			Priority:       priorityFor(len(m.related)),
			RelatedCareers: m.related,
		})
	}
	return out
}

func priorityFor(count int) types.Priority {
	switch {
	case count >= highPriorityCount:
		return types.PriorityHigh
	case count >= mediumPriorityCount:
		return types.PriorityMedium
	default:
		return types.PriorityLow
	}
}

func estimatedTime(p types.Priority) string {
	if p == types.PriorityHigh {
		return timeHighPriority
	}
	return timeOtherPriority
}

// learningPath maps the first missing skills to at most two resources taken
// from the related careers in catalog order, or to one generic search link.
func learningPath(missing []types.MissingSkill, catalog []types.Career) []types.LearningPathItem {
	n := min(learningPathLimit, len(missing))
	path := make([]types.LearningPathItem, 0, n)

	for _, m := range missing[:n] {
		related := make(map[string]bool, len(m.RelatedCareers))
		for _, name := range m.RelatedCareers {
			related[name] = true
		}

		eta := estimatedTime(m.Priority)
		resources := make([]types.LearningResource, 0, resourcesPerSkill)
	collect:
		for i := range catalog {
			if !related[catalog[i].Name] {
				continue
			}
			for _, res := range catalog[i].Resources {
				if len(resources) == resourcesPerSkill {
					break collect
				}
				resources = append(resources, types.LearningResource{
					Title:         res.Title,
					URL:           res.URL,
					Type:          res.Type,
					EstimatedTime: eta,
				})
			}
		}

		if len(resources) == 0 {
			resources = append(resources, genericResource(m.Skill, eta))
		}
		path = append(path, types.LearningPathItem{Skill: m.Skill, Resources: resources})
	}
	return path
}

func genericResource(skill, eta string) types.LearningResource {
	return types.LearningResource{
		Title:         "Learn " + skill,
		URL:           searchURLPrefix + encodeURIComponent(skill+" tutorial"),
		Type:          types.ResourceTypeVideo,
		EstimatedTime: eta,
	}
}

// componentUnescaper restores the characters a URI component leaves as-is
// but url.QueryEscape encodes.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

func encodeURIComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}

// SkillGap compares the user's skills with the named career. The lookup is
// exact on the stored name. A career without required skills reports 0%.
func (e *Engine) SkillGap(user types.UserProfile, catalog []types.Career, careerName string) (*types.SkillGapReport, error) {
	var career *types.Career
	for i := range catalog {
		if catalog[i].Name == careerName {
			career = &catalog[i]
			break
		}
	}
	if career == nil {
		return nil, fmt.Errorf("%w: %s", ErrCareerNotFound, careerName)
	}
	return e.Gap(user, *career), nil
}

// Gap builds the skill gap report for a single career.
func (e *Engine) Gap(user types.UserProfile, career types.Career) *types.SkillGapReport {
	p := newProfile(user)
	reqs := requirements(&career)

	report := &types.SkillGapReport{
		Career:         career.Name,
		TotalRequired:  len(reqs),
		MatchingSkills: make([]string, 0, len(reqs)),
		MissingSkills:  make([]string, 0, len(reqs)),
		Resources:      append([]types.LearningResource{}, career.Resources...),
	}
	for _, r := range reqs {
		if e.holds(p, r.token) {
			report.MatchingSkills = append(report.MatchingSkills, r.display)
		} else {
			report.MissingSkills = append(report.MissingSkills, r.display)
		}
	}
	if len(reqs) > 0 {
		report.MatchPercentage = int(math.Round(float64(len(report.MatchingSkills)) / float64(len(reqs)) * 100))
	}
	return report
}
