package cache

import (
	"context"
	"fmt"
)

// Invalidation helpers used by the write paths. Cache invalidation failures
// are logged, never propagated: a stale entry expires on its own TTL and must
// not fail the write that triggered it.

func (m *CacheManager) SafeDelete(ctx context.Context, helper *CacheHelper, keyParts ...string) {
	if err := helper.Delete(ctx, keyParts...); err != nil && err != ErrCacheNotAvailable {
		m.logger.Warn("cache invalidation failed", "key_parts", keyParts, "error", err)
	}
}

func (m *CacheManager) SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil && err != ErrCacheNotAvailable {
		m.logger.Warn("cache pattern invalidation failed", "pattern", pattern, "error", err)
	}
}

// InvalidateSession drops the cached session and any per-exam session lists.
func (m *CacheManager) InvalidateSession(ctx context.Context, sessionID, examID uint) {
	m.SafeDelete(ctx, m.Session, fmt.Sprintf("%d", sessionID))
	m.SafeInvalidatePattern(ctx, m.Session, fmt.Sprintf("exam:%d:*", examID))
}

// InvalidateExam drops the cached exam and its question list.
func (m *CacheManager) InvalidateExam(ctx context.Context, examID uint) {
	m.SafeDelete(ctx, m.Exam, fmt.Sprintf("%d", examID))
	m.SafeInvalidatePattern(ctx, m.Question, fmt.Sprintf("exam:%d:*", examID))
}

// InvalidateResult drops the cached result for a session and any per-exam
// result aggregates.
func (m *CacheManager) InvalidateResult(ctx context.Context, sessionID, examID uint) {
	m.SafeDelete(ctx, m.Result, fmt.Sprintf("session:%d", sessionID))
	m.SafeInvalidatePattern(ctx, m.Result, fmt.Sprintf("exam:%d:*", examID))
}
