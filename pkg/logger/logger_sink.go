package logger

import (
	"fmt"

	"satch-client/pkg/utilities/timeutil"

	"github.com/rs/zerolog"
)

type SinkFunc func(string, zerolog.Level, timeutil.TimeUTC)

func AddSinkToLoggerInstance(loggerInstance *Logger, sinkFunction SinkFunc) {
	loggerInstance.sink = sinkFunction
}

func (l *Logger) activateSinkFormatted(level zerolog.Level, format string, v ...interface{}) {
	if l.sink == nil {
		return
	}
	l.activateSink(fmt.Sprintf(format, v...), level)
}

func (l *Logger) activateSink(msg string, level zerolog.Level) {
	if l.sink == nil || level < l.zl.GetLevel() {
		return
	}
	l.sink(msg, level, timeutil.NowUTC())
}
