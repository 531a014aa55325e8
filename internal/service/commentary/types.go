package commentary

import (
	"context"

	"github.com/laimis/stock-analysis-sub000/internal/service/monitoring"
)

// Commentator 为一批告警生成一小段可读的点评, 失败时通知照常发送
type Commentator interface {
	Comment(ctx context.Context, alerts []monitoring.TriggeredAlert) (string, error)
}
