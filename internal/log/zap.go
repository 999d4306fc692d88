package log

import (
	"go.uber.org/zap"
)

// ZapLogger records events in memory and forwards each one as a structured zap entry.
type ZapLogger struct {
	MemoryLogger
	z *zap.Logger
}

func NewZapLogger(z *zap.Logger) *ZapLogger {
	if z == nil {
		z = zap.NewNop()
	}
	return &ZapLogger{z: z.Named("match")}
}

func (l *ZapLogger) Log(event GameEvent) {
	e := l.record(event)
	fields := []zap.Field{
		zap.Int("seq", e.Seq),
		zap.Int("round", e.Round),
		zap.Int("turn", e.Turn),
		zap.String("phase", e.Phase),
		zap.Int("player", e.Player),
		zap.Stringer("type", e.Type),
	}
	if e.Card != "" {
		fields = append(fields, zap.String("card", e.Card))
	}
	switch e.Type {
	case EventRejected:
		l.z.Warn(e.Details, fields...)
	case EventWin, EventDrawGame, EventRoundEnd:
		l.z.Info(e.Details, fields...)
	default:
		l.z.Debug(e.Details, fields...)
	}
}
