package alerts

import (
	"context"
	"fmt"

	"github.com/gen2brain/beeep"
)

// DesktopNotifier raises quota alerts as native desktop notifications.
type DesktopNotifier struct {
	notify func(title, body string) error
}

// NewDesktopNotifier creates a notifier backed by the OS notification service.
func NewDesktopNotifier() *DesktopNotifier {
	return NewDesktopNotifierFunc(func(title, body string) error {
		return beeep.Notify(title, body, "")
	})
}

// NewDesktopNotifierFunc creates a desktop notifier that delivers through fn.
func NewDesktopNotifierFunc(fn func(title, body string) error) *DesktopNotifier {
	return &DesktopNotifier{notify: fn}
}

func (d *DesktopNotifier) Name() string { return "desktop" }

func (d *DesktopNotifier) Send(ctx context.Context, alert Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	title := fmt.Sprintf("%s quota %s", alert.Service, alert.Level)
	body := alert.Message
	if body == "" {
		body = fmt.Sprintf("%d of %d used (%.0f%%) this %s period",
			alert.Used, alert.Limit, alert.UsagePct(), alert.Period)
	}

	if err := d.notify(title, body); err != nil {
		return fmt.Errorf("desktop notify: %w", err)
	}
	return nil
}
