package achievement

import (
	"fmt"

	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/progress"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/streak"
)

// Candidate is an achievement a rule considers unlocked. The granter
// turns candidates into rows; duplicates are skipped by the storage
// uniqueness constraint, never re-checked here.
type Candidate struct {
	Type        string
	LevelEarned int
}

// Rule evaluates one unlock condition against the user's current
// progress and streak. Either argument may be nil when the user has no
// row yet.
type Rule func(p *progress.Progress, s *streak.Streak) []Candidate

// RulesConfig holds the externally configurable unlock thresholds.
type RulesConfig struct {
	// LessonMilestones unlock "lessons_N" once the completed-lesson count
	// reaches N.
	LessonMilestones []int

	// StreakMilestones unlock "streak_N" once the current streak reaches
	// N consecutive days.
	StreakMilestones []int

	// LevelMilestones unlock "level_reached" (one grant per level) once
	// the current level reaches the milestone.
	LevelMilestones []int
}

// DefaultRulesConfig mirrors the thresholds the tutoring app shipped with.
func DefaultRulesConfig() RulesConfig {
	return RulesConfig{
		LessonMilestones: []int{1, 5, 10, 25, 50, 100},
		StreakMilestones: []int{3, 7, 14, 30, 100},
		LevelMilestones:  []int{1, 2, 3, 4, 5},
	}
}

// Achievement type names. Milestone types encode their threshold so the
// (user, type, level) uniqueness key makes every grant happen once.
const (
	TypeLevelReached = "level_reached"

	lessonTypeFormat = "lessons_%d"
	streakTypeFormat = "streak_%d"
)

// LessonMilestoneType returns the type name for a lesson-count milestone.
func LessonMilestoneType(n int) string { return fmt.Sprintf(lessonTypeFormat, n) }

// StreakMilestoneType returns the type name for a streak milestone.
func StreakMilestoneType(n int) string { return fmt.Sprintf(streakTypeFormat, n) }

// RuleSet is an ordered collection of unlock rules.
type RuleSet struct {
	rules []Rule
}

// NewRuleSet builds the rule table from configuration.
func NewRuleSet(cfg RulesConfig) *RuleSet {
	rules := []Rule{
		lessonMilestoneRule(cfg.LessonMilestones),
		streakMilestoneRule(cfg.StreakMilestones),
		levelMilestoneRule(cfg.LevelMilestones),
	}
	return &RuleSet{rules: rules}
}

// Candidates evaluates every rule and collects all unlocked candidates.
func (rs *RuleSet) Candidates(p *progress.Progress, s *streak.Streak) []Candidate {
	var out []Candidate
	for _, rule := range rs.rules {
		out = append(out, rule(p, s)...)
	}
	return out
}

func lessonMilestoneRule(milestones []int) Rule {
	return func(p *progress.Progress, _ *streak.Streak) []Candidate {
		if p == nil {
			return nil
		}
		var out []Candidate
		for _, m := range milestones {
			if p.TotalLessonsCompleted >= m {
				out = append(out, Candidate{Type: LessonMilestoneType(m)})
			}
		}
		return out
	}
}

func streakMilestoneRule(milestones []int) Rule {
	return func(_ *progress.Progress, s *streak.Streak) []Candidate {
		if s == nil {
			return nil
		}
		var out []Candidate
		for _, m := range milestones {
			if s.CurrentStreak >= m {
				out = append(out, Candidate{Type: StreakMilestoneType(m)})
			}
		}
		return out
	}
}

func levelMilestoneRule(milestones []int) Rule {
	return func(p *progress.Progress, _ *streak.Streak) []Candidate {
		if p == nil {
			return nil
		}
		var out []Candidate
		for _, m := range milestones {
			if p.CurrentLevel >= m {
				out = append(out, Candidate{Type: TypeLevelReached, LevelEarned: m})
			}
		}
		return out
	}
}
