package internal

import (
	"context"

	"go.uber.org/zap"

	adminkit "github.com/enesj/single-tenant-template-sub005"
)

func batchErrorCode(err error) string {
	if ee, ok := adminkit.AsEngineError(err); ok {
		return ee.Code
	}
	return adminkit.ErrCodeInternalError
}

func (s *entityService) BatchUpdateItems(ctx context.Context, scope any, entity string, items []adminkit.BatchUpdateItem, opts *adminkit.BatchOptions) (*adminkit.BatchUpdateResult, error) {
	if !s.registry.EntityExists(entity) {
		return nil, adminkit.NewEntityNotFoundError(entity)
	}
	// An empty batch is a caller error, never a silent no-op.
	if len(items) == 0 {
		return nil, adminkit.NewEmptyBatchError(entity)
	}
	if opts == nil {
		opts = &adminkit.BatchOptions{}
	}

	result := &adminkit.BatchUpdateResult{}
	for _, item := range items {
		updated, err := s.UpdateItem(ctx, scope, entity, item.ID, item.Data, &opts.ItemOptions)
		if err != nil {
			if !opts.ContinueOnError {
				// Default policy: abort on the first failure. Items
				// already updated stay applied; the failure surfaces.
				return nil, err
			}
			zap.S().Warnw("batch update item failed, continuing",
				"entity", entity, "id", item.ID, "error", err)
			result.Errors = append(result.Errors, adminkit.BatchItemError{
				ID:    item.ID,
				Error: err.Error(),
				Code:  batchErrorCode(err),
			})
			continue
		}
		result.Updated++
		result.Results = append(result.Results, updated)
	}

	zap.S().Debugw("batch update completed",
		"entity", entity, "updated", result.Updated, "failed", len(result.Errors))
	return result, nil
}

func (s *entityService) BatchDeleteItems(ctx context.Context, scope any, entity string, ids []any, opts *adminkit.BatchOptions) (*adminkit.BatchDeleteResult, error) {
	if !s.registry.EntityExists(entity) {
		return nil, adminkit.NewEntityNotFoundError(entity)
	}
	if len(ids) == 0 {
		return nil, adminkit.NewEmptyBatchError(entity)
	}
	if opts == nil {
		opts = &adminkit.BatchOptions{}
	}

	result := &adminkit.BatchDeleteResult{}
	for _, id := range ids {
		err := s.DeleteItem(ctx, scope, entity, id, &opts.ItemOptions)
		if err == nil {
			result.Deleted++
			continue
		}
		// Missing rows are reported, not raised, regardless of policy.
		if adminkit.IsItemNotFound(err) {
			result.NotFoundIDs = append(result.NotFoundIDs, id)
			continue
		}
		if !opts.ContinueOnError {
			return nil, err
		}
		zap.S().Warnw("batch delete item failed, continuing",
			"entity", entity, "id", id, "error", err)
		result.Errors = append(result.Errors, adminkit.BatchItemError{
			ID:    id,
			Error: err.Error(),
			Code:  batchErrorCode(err),
		})
	}

	zap.S().Debugw("batch delete completed",
		"entity", entity, "deleted", result.Deleted,
		"notFound", len(result.NotFoundIDs), "failed", len(result.Errors))
	return result, nil
}
