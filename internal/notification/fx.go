package notification

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/hireloop/hireloop/internal/config"
)

var Module = fx.Module("notification",
	fx.Provide(provideNotifier),
	fx.Provide(NewDispatcher),
)

func provideNotifier(cfg config.Config, log *zap.Logger) Notifier {
	if cfg.SMTPHost == "" {
		return NewNoopNotifier()
	}
	return NewSMTPNotifier(cfg, log)
}
