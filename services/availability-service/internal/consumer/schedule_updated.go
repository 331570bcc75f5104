package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/segmentio/kafka-go"
)

const TopicBusinessHoursUpdated = "branch.business_hours.updated.v1"

type Invalidator interface {
	Invalidate(ctx context.Context, branchID string) error
}

type businessHoursUpdated struct {
	BranchID string `json:"branch_id"`
}

// ScheduleUpdatedHandler drops the cached schedule of the branch named in the event.
func ScheduleUpdatedHandler(inv Invalidator, logger *slog.Logger) Handler {
	return func(ctx context.Context, msg kafka.Message) error {
		var evt businessHoursUpdated
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			return fmt.Errorf("decode %s: %w", msg.Topic, err)
		}
		branchID := strings.TrimSpace(evt.BranchID)
		if branchID == "" {
			return errors.New("business hours event without branch_id")
		}
		if err := inv.Invalidate(ctx, branchID); err != nil {
			return err
		}
		logger.InfoContext(ctx, "schedule cache invalidated", "branch_id", branchID)
		return nil
	}
}
