package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"dispatchmap/internal/domain/entities"
	"dispatchmap/internal/events"
)

// NoticeService turns soft failures into model notices, logs them and, when
// a publisher is configured, forwards them as events.
type NoticeService struct {
	publisher events.Publisher
	logger    *zap.Logger
}

// NewNoticeService accepts a nil publisher; notices are then only logged.
func NewNoticeService(publisher events.Publisher, logger *zap.Logger) *NoticeService {
	return &NoticeService{
		publisher: publisher,
		logger:    logger,
	}
}

// AddressUnresolvable reports an order left off the map because its address
// could not be geocoded.
func (s *NoticeService) AddressUnresolvable(ctx context.Context, agentID string, order entities.Order) entities.Notice {
	s.logger.Warn("order address unresolvable, excluded from map",
		zap.String("agent_id", agentID),
		zap.String("order_id", order.ID),
		zap.String("address", order.UserAddress),
	)

	notice := entities.Notice{
		Kind:    entities.NoticeAddressUnresolvable,
		OrderID: order.ID,
		Message: "Could not locate the delivery address for this order.",
	}
	s.publish(ctx, agentID, notice, "")
	return notice
}

// RouteServiceFailure reports that the map fell back to straight lines.
func (s *NoticeService) RouteServiceFailure(ctx context.Context, agentID string, reason entities.RouteFailure, err error) entities.Notice {
	s.logger.Warn("route service failed, using straight-line fallback",
		zap.String("agent_id", agentID),
		zap.String("reason", string(reason)),
		zap.Error(err),
	)

	notice := entities.Notice{
		Kind:    entities.NoticeRouteServiceFailure,
		Message: "Failed to get optimized route from server.",
	}
	s.publish(ctx, agentID, notice, string(reason))
	return notice
}

// OrdersUnavailable reports that the order snapshot could not be fetched.
func (s *NoticeService) OrdersUnavailable(ctx context.Context, agentID string, err error) entities.Notice {
	s.logger.Error("order snapshot unavailable",
		zap.String("agent_id", agentID),
		zap.Error(err),
	)

	notice := entities.Notice{
		Kind:    entities.NoticeOrdersUnavailable,
		Message: "Failed to load active orders.",
	}
	s.publish(ctx, agentID, notice, "")
	return notice
}

func (s *NoticeService) publish(ctx context.Context, agentID string, notice entities.Notice, reason string) {
	if s.publisher == nil {
		return
	}

	evt := events.NoticeEvent{
		Type:       string(notice.Kind),
		AgentID:    agentID,
		OrderID:    notice.OrderID,
		Reason:     reason,
		Message:    notice.Message,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Error("failed to publish notice",
			zap.String("type", evt.Type),
			zap.String("agent_id", agentID),
			zap.Error(err),
		)
	}
}
