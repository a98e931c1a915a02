package notify

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/shanehull/earningswatch/internal/types"
)

// MessageSender delivers a rendered message.
type MessageSender interface {
	Send(msg *RenderedMessage) error
}

// EmailNotifier sends one email per due item, concurrently.
type EmailNotifier struct {
	renderer *HTMLEmailRenderer
	sender   MessageSender
	logger   *zap.Logger
}

func NewEmailNotifier(renderer *HTMLEmailRenderer, sender MessageSender, logger *zap.Logger) *EmailNotifier {
	return &EmailNotifier{renderer: renderer, sender: sender, logger: logger}
}

func (n *EmailNotifier) Notify(ctx context.Context, items []types.WatchItem) error {
	if len(items) == 0 {
		return nil
	}
	day := items[0].EarningsDate

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs error
	)
	record := func(err error) {
		mu.Lock()
		errs = multierr.Append(errs, err)
		mu.Unlock()
	}

	for _, item := range items {
		if ctx.Err() != nil {
			record(ctx.Err())
			break
		}

		msg, err := n.renderer.Render(NotificationData{Item: item, Day: day})
		if err != nil {
			record(fmt.Errorf("render %s: %w", item.Ticker, err))
			continue
		}

		wg.Add(1)
		go func(ticker string, msg *RenderedMessage) {
			defer wg.Done()
			if err := n.sender.Send(msg); err != nil {
				record(fmt.Errorf("email %s: %w", ticker, err))
			}
		}(item.Ticker, msg)
	}

	wg.Wait()
	return errs
}
