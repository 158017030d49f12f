// Package progress owns the single curriculum-progress row each user has.
// Pointers advance monotonically and the completed-lesson set is the
// source of truth for the completion count.
package progress

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Default curriculum position for a fresh progress row. Lesson numbering
// starts at 1; level and module start at 0.
const (
	DefaultLevel  = 0
	DefaultModule = 0
	DefaultLesson = 1
)

// Progress tracks a user's position in the curriculum and the set of
// lessons they have completed.
type Progress struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	CurrentLevel  int
	CurrentModule int
	CurrentLesson int

	// CompletedLessons is the deduplicated set of lesson keys, kept sorted
	// for stable storage. TotalLessonsCompleted always equals its length.
	CompletedLessons      []string
	TotalLessonsCompleted int

	// UpdatedAt refreshes only when a mutation actually changes content,
	// so it reads as "last meaningful update".
	UpdatedAt time.Time
}

// New creates an empty progress row for a user.
func New(userID uuid.UUID, now time.Time) *Progress {
	return &Progress{
		ID:            uuid.New(),
		UserID:        userID,
		CurrentLevel:  DefaultLevel,
		CurrentModule: DefaultModule,
		CurrentLesson: DefaultLesson,
		UpdatedAt:     now,
	}
}

// LessonKey builds the identifier a completed lesson is stored under.
func LessonKey(level, module, lesson int) string {
	return fmt.Sprintf("%d-%d-%d", level, module, lesson)
}

// HasCompleted reports whether the lesson key is in the completed set.
func (p *Progress) HasCompleted(key string) bool {
	i := sort.SearchStrings(p.CompletedLessons, key)
	return i < len(p.CompletedLessons) && p.CompletedLessons[i] == key
}

// RecordCompletion marks a lesson as completed and advances the position
// pointers to the maximum of their current and supplied values. Duplicate
// completions leave the set and count untouched; pointers still advance
// if the supplied position is ahead. Returns whether anything changed.
func (p *Progress) RecordCompletion(level, module, lesson int, now time.Time) bool {
	changed := false

	key := LessonKey(level, module, lesson)
	if !p.HasCompleted(key) {
		i := sort.SearchStrings(p.CompletedLessons, key)
		p.CompletedLessons = append(p.CompletedLessons, "")
		copy(p.CompletedLessons[i+1:], p.CompletedLessons[i:])
		p.CompletedLessons[i] = key
		changed = true
	}
	p.TotalLessonsCompleted = len(p.CompletedLessons)

	if level > p.CurrentLevel {
		p.CurrentLevel = level
		changed = true
	}
	if module > p.CurrentModule {
		p.CurrentModule = module
		changed = true
	}
	if lesson > p.CurrentLesson {
		p.CurrentLesson = lesson
		changed = true
	}

	if changed {
		p.UpdatedAt = now
	}
	return changed
}
