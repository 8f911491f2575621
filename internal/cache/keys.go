package cache

import (
	"strconv"
	"strings"
)

const (
	GlobalKeyPrefix = "quizzy"

	serviceQuiz  = "quiz"
	objectDetail = "detail"
)

// GenerateCacheKey builds "<prefix>:<service>:<object>:<identifier>".
// Optional paramsKey values are joined by "_" and appended as one more segment.
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

// QuizDetailKey is the key of a quiz with its resolved items.
func QuizDetailKey(quizID int64) string {
	return GenerateCacheKey(serviceQuiz, objectDetail, strconv.FormatInt(quizID, 10))
}
