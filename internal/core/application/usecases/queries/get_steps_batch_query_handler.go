package queries

import (
	"context"
	"fmt"
	"strings"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/step"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetStepsBatchQueryHandler retrieves custody steps from the database in
// filtered, paged batches. Uses direct SQL for optimal read performance in
// the CQRS pattern.
//
// Example:
//
//	handler := NewGetStepsBatchQueryHandler(db)
//	query, _ := NewGetStepsBatchQuery(StepsBatchFilter{ShipmentID: &id}, 50, 0)
//
//	batch, err := handler.Handle(ctx, query)
//	if err != nil {
//	    log.Printf("Failed to get steps: %v", err)
//	    return err
//	}
//
//	fmt.Printf("Found %d of %d steps\n", len(batch.Items), batch.Total)
type GetStepsBatchQueryHandler struct {
	db *gorm.DB
}

// NewGetStepsBatchQueryHandler creates a handler for batch step queries.
// Requires a GORM database connection for query execution.
func NewGetStepsBatchQueryHandler(db *gorm.DB) GetStepsBatchQueryHandler {
	return GetStepsBatchQueryHandler{db: db}
}

// Handle executes the batch query.
// Results are sorted by creation time and ID for stable paging; Total counts
// every step matching the filter, not just the returned page.
func (h GetStepsBatchQueryHandler) Handle(
	ctx context.Context,
	query GetStepsBatchQuery,
) (GetStepsBatchQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetStepsBatchQueryResponse{}, err
	}

	where, args := buildStepsWhere(query.Filter())

	var total int64
	if err := h.db.WithContext(ctx).
		Raw("SELECT COUNT(*) FROM steps"+where, args...).
		Scan(&total).Error; err != nil {
		return GetStepsBatchQueryResponse{}, err
	}

	rows, err := h.db.WithContext(ctx).Raw(fmt.Sprintf(`
		SELECT
			id,
			shipment_id,
			journey_id,
			operator_id,
			agent_id,
			chain_index,
			state,
			cost,
			holder_address,
			recipient_address,
			tx_out_ref,
			eta,
			version,
			updated_at
		FROM steps%s
		ORDER BY created_at, id
		LIMIT %d OFFSET %d
	`, where, query.Limit(), query.Offset()), args...).Rows()
	if err != nil {
		return GetStepsBatchQueryResponse{}, err
	}
	defer rows.Close()

	items := make([]GetStepsBatchQueryResponseItem, 0, query.Limit())

	for rows.Next() {
		var item GetStepsBatchQueryResponseItem
		var id, shipmentID, journeyID, operatorID, agentID uuid.UUID
		var state int

		err = rows.Scan(
			&id,
			&shipmentID,
			&journeyID,
			&operatorID,
			&agentID,
			&item.Index,
			&state,
			&item.Cost,
			&item.HolderAddress,
			&item.RecipientAddress,
			&item.TxOutRef,
			&item.ETA,
			&item.Version,
			&item.UpdatedAt,
		)
		if err != nil {
			return GetStepsBatchQueryResponse{}, err
		}

		item.State = step.State(state)
		if item.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return GetStepsBatchQueryResponse{}, err
		}
		if item.ShipmentID, err = kernel.UUIDFromBytes(shipmentID[:]); err != nil {
			return GetStepsBatchQueryResponse{}, err
		}
		if item.JourneyID, err = kernel.UUIDFromBytes(journeyID[:]); err != nil {
			return GetStepsBatchQueryResponse{}, err
		}
		if item.OperatorID, err = kernel.UUIDFromBytes(operatorID[:]); err != nil {
			return GetStepsBatchQueryResponse{}, err
		}
		if item.AgentID, err = kernel.UUIDFromBytes(agentID[:]); err != nil {
			return GetStepsBatchQueryResponse{}, err
		}

		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return GetStepsBatchQueryResponse{}, err
	}

	return GetStepsBatchQueryResponse{Items: items, Total: total}, nil
}

// buildStepsWhere assembles the WHERE clause from the filter's set fields.
func buildStepsWhere(filter StepsBatchFilter) (string, []any) {
	conditions := make([]string, 0, 8)
	args := make([]any, 0, 8)

	if filter.ShipmentID != nil {
		conditions = append(conditions, "shipment_id = ?")
		args = append(args, filter.ShipmentID.String())
	}
	if filter.JourneyID != nil {
		conditions = append(conditions, "journey_id = ?")
		args = append(args, filter.JourneyID.String())
	}
	if filter.OperatorID != nil {
		conditions = append(conditions, "operator_id = ?")
		args = append(args, filter.OperatorID.String())
	}
	if filter.AgentID != nil {
		conditions = append(conditions, "agent_id = ?")
		args = append(args, filter.AgentID.String())
	}
	if filter.SenderID != nil {
		conditions = append(conditions, "sender_id = ?")
		args = append(args, filter.SenderID.String())
	}
	if filter.RecipientID != nil {
		conditions = append(conditions, "recipient_id = ?")
		args = append(args, filter.RecipientID.String())
	}
	if filter.HolderID != nil {
		conditions = append(conditions, "holder_id = ?")
		args = append(args, filter.HolderID.String())
	}
	if filter.State != nil {
		conditions = append(conditions, "state = ?")
		args = append(args, int(*filter.State))
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
