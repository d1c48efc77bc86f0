package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateForm drops a form's cache entries plus the report aggregates
// derived from it.
func (cm *CacheManager) InvalidateForm(ctx context.Context, formID string) {
	SafeDelete(ctx, cm.Form, fmt.Sprintf("id:%s", formID))
	SafeInvalidatePattern(ctx, cm.Form, "list:*")
	SafeInvalidatePattern(ctx, cm.Report, fmt.Sprintf("form:%s:*", formID))
}

// InvalidateEvent drops an event's cache entries and its report aggregates.
func (cm *CacheManager) InvalidateEvent(ctx context.Context, eventID string) {
	SafeDelete(ctx, cm.Event, fmt.Sprintf("id:%s", eventID))
	SafeInvalidatePattern(ctx, cm.Event, "list:*")
	SafeInvalidatePattern(ctx, cm.Report, fmt.Sprintf("event:%s:*", eventID))
}

// InvalidateSubmissionReports drops the aggregates a new submission changes.
// Submissions themselves are never cached, only their rollups are.
func (cm *CacheManager) InvalidateSubmissionReports(ctx context.Context, eventID, formID string) {
	SafeInvalidatePattern(ctx, cm.Report, fmt.Sprintf("event:%s:*", eventID))
	SafeInvalidatePattern(ctx, cm.Report, fmt.Sprintf("form:%s:*", formID))
	SafeInvalidatePattern(ctx, cm.Exists, fmt.Sprintf("submission:%s:*", eventID))
}
