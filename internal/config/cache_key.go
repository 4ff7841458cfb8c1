package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// StudentSessionKey returns the cache key holding a student's active token id.
func (r *CacheKeyStruct) StudentSessionKey(studentID int) string {
	return fmt.Sprintf("login:%d", studentID)
}

// StudentGPAKey returns the cache key for a student's overall aggregate record.
func (r *CacheKeyStruct) StudentGPAKey(studentID int) string {
	return fmt.Sprintf("student:%d:gpa", studentID)
}

// StudentYearGPAKey returns the cache key for a student's aggregate within one academic year.
func (r *CacheKeyStruct) StudentYearGPAKey(studentID, academicYearID int) string {
	return fmt.Sprintf("student:%d:year:%d:gpa", studentID, academicYearID)
}

// StudentGPAKeyPattern matches every cached aggregate of a student.
func (r *CacheKeyStruct) StudentGPAKeyPattern(studentID int) string {
	return fmt.Sprintf("student:%d:*gpa", studentID)
}

// StudentGPAGenKey returns the counter bumped whenever a student's cached
// aggregates are invalidated. It must not match StudentGPAKeyPattern.
func (r *CacheKeyStruct) StudentGPAGenKey(studentID int) string {
	return fmt.Sprintf("student:%d:gpa_gen", studentID)
}

// GPAGenKey returns the counter bumped when every cached aggregate is invalidated.
func (r *CacheKeyStruct) GPAGenKey() string {
	return "settings:gpa_gen"
}

// GradingScaleKey returns the cache key for the active grading scale.
func (r *CacheKeyStruct) GradingScaleKey() string {
	return "settings:grading_scale"
}

// StudentGPAChannel returns the Redis PubSub channel for a student's live GPA updates.
func (r *CacheKeyStruct) StudentGPAChannel(studentID int) string {
	return fmt.Sprintf("student:%d:gpa_updates", studentID)
}

// AuthRateLimitKey returns the counter key for login attempts from one client.
func (r *CacheKeyStruct) AuthRateLimitKey(clientIP string) string {
	return fmt.Sprintf("ratelimit:auth:%s", clientIP)
}

var CacheKey = NewCacheKeyStruct()
