package script

import (
	"context"
	"fmt"

	"polydraw/internal/domain"
	"polydraw/internal/infra/tracer"
	"polydraw/internal/usecase/app"
	"polydraw/internal/usecase/dispatch"
)

// Replay dispatches msgs in order and returns the final history. It stops at
// the first dispatch error.
func Replay(ctx context.Context, d *dispatch.Dispatcher, msgs []domain.Message) (app.State, error) {
	ctx, span := tracer.StartSpan(ctx, "script.replay")
	defer span.End()
	span.SetAttributes(
		tracer.StringAttr("session", d.SessionID()),
		tracer.IntAttr("events", len(msgs)),
	)

	h := d.State()
	for i, msg := range msgs {
		var err error
		h, err = d.Dispatch(ctx, msg)
		if err != nil {
			err = fmt.Errorf("replay event %d: %w", i, err)
			tracer.RecordError(span, err)
			return h, err
		}
	}
	tracer.SetOK(span)
	return h, nil
}
