package logger

import (
	"io"
	"log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Init builds a console-encoded zap logger writing to out, installs it as
// the global zap logger and redirects the standard library logger into it.
// The returned function restores the previous state.
func Init(level string, out io.Writer) (*zap.Logger, func()) {
	lvl := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		log.Printf("[LOGGER] ⚠ Unknown log level %q, using info", level)
	}

	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05.000000")
	enc.CallerKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(out), lvl)
	l := zap.New(core)

	undoGlobals := zap.ReplaceGlobals(l)
	undoStdLog := zap.RedirectStdLog(l)
	return l, func() {
		undoStdLog()
		undoGlobals()
		l.Sync()
	}
}
