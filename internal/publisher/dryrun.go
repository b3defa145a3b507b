package publisher

import (
	"context"

	"github.com/google/uuid"

	logx "pollcaster/pkg/logx"
)

// DryRun logs polls instead of sending them.
type DryRun struct {
	log logx.Logger
}

func NewDryRun(log logx.Logger) *DryRun {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &DryRun{log: log.With(logx.String("comp", "publisher.dryrun"))}
}

func (d *DryRun) Publish(ctx context.Context, p Poll) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := "dryrun-" + uuid.NewString()
	d.log.Info("dry-run poll",
		logx.String("delivery_id", id),
		logx.String("text", p.Text),
		logx.Strings("choices", p.Choices),
		logx.Duration("duration", p.Duration),
	)
	return id, nil
}
