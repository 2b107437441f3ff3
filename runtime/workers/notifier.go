package workers

import (
	"context"
	"log/slog"

	"taskline/runtime"
)

// NotifierWorker drains the fan-out queue. One request at a time: the
// engine's database lookups happen here, off the connections' read loops.
type NotifierWorker struct {
	log      *slog.Logger
	engine   *runtime.FanoutEngine
	requests chan runtime.NotificationRequest
}

func NewNotifierWorker(log *slog.Logger, engine *runtime.FanoutEngine,
	requests chan runtime.NotificationRequest) *NotifierWorker {
	return &NotifierWorker{log: log, engine: engine, requests: requests}
}

func (w *NotifierWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping notifier")
			return nil
		case request, ok := <-w.requests:
			if !ok {
				return nil
			}
			if err := w.engine.Notify(ctx, request.SenderID, request.Conversation); err != nil {
				// Fire-and-forget contract: the sender already got its ack,
				// a failed fan-out is only worth a log line.
				w.log.Error("notification fan-out failed",
					"conversation", request.Conversation,
					"sender", request.SenderID,
					"error", err)
			}
		}
	}
}
