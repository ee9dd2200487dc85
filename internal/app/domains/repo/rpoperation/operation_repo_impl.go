package rpoperation

import (
	"context"
	"time"

	"wbhub/internal/app/infra/persistence/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OperationRepositoryImpl is the Postgres implementation.
type OperationRepositoryImpl struct {
	db *gorm.DB
}

// NewOperationRepository creates the operation repository.
func NewOperationRepository(db *gorm.DB) OperationRepository {
	return &OperationRepositoryImpl{db: db}
}

// SaveStart claims the operation id with an insert that ignores conflicts;
// zero rows affected means another request holds the id.
func (r *OperationRepositoryImpl) SaveStart(ctx context.Context, operationID, operator string, request []byte) (bool, error) {
	po := &entity.SupplyOperation{
		OperationID:    operationID,
		Operator:       operator,
		RequestPayload: request,
		Status:         entity.OperationStatusProcessing,
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(po)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// SaveSuccess stores the final result and flips the status to SUCCESS.
func (r *OperationRepositoryImpl) SaveSuccess(ctx context.Context, operationID string, response []byte) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entity.SupplyOperation{}).
		Where("operation_id = ?", operationID).
		Updates(map[string]interface{}{
			"status":        entity.OperationStatusSuccess,
			"response_data": response,
			"completed_at":  now,
		}).Error
}

// SaveError stores the failure message and flips the status to FAILED.
func (r *OperationRepositoryImpl) SaveError(ctx context.Context, operationID, message string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entity.SupplyOperation{}).
		Where("operation_id = ?", operationID).
		Updates(map[string]interface{}{
			"status":        entity.OperationStatusFailed,
			"error_message": message,
			"completed_at":  now,
		}).Error
}

// UpdateResponse overwrites the stored response of a finished operation.
func (r *OperationRepositoryImpl) UpdateResponse(ctx context.Context, operationID string, response []byte) error {
	return r.db.WithContext(ctx).
		Model(&entity.SupplyOperation{}).
		Where("operation_id = ?", operationID).
		Update("response_data", response).Error
}

// GetByID fetches one operation record.
func (r *OperationRepositoryImpl) GetByID(ctx context.Context, operationID string) (*Operation, error) {
	var po entity.SupplyOperation
	err := r.db.WithContext(ctx).Where("operation_id = ?", operationID).First(&po).Error
	if err != nil {
		return nil, err
	}

	op := &Operation{
		OperationID: po.OperationID,
		Operator:    po.Operator,
		Request:     po.RequestPayload,
		Response:    po.ResponseData,
		Status:      po.Status,
		CreatedAt:   po.CreatedAt,
		CompletedAt: po.CompletedAt,
	}
	if po.ErrorMessage != nil {
		op.ErrorMessage = *po.ErrorMessage
	}
	return op, nil
}

// CleanupOld deletes finished operations older than the cutoff.
func (r *OperationRepositoryImpl) CleanupOld(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ? AND status <> ?", cutoff, entity.OperationStatusProcessing).
		Delete(&entity.SupplyOperation{})
	return result.RowsAffected, result.Error
}
