package rabbitmq

import (
	"fmt"

	"satch-client/pkg/logger"
	logger_message "satch-client/pkg/utilities/logger"
	"satch-client/pkg/utilities/timeutil"

	"github.com/rs/zerolog"
)

func CreateRabbitmqLoggerSink(service string, publisher IRabbitmqPublisher) logger.SinkFunc {
	return func(msg string, level zerolog.Level, timestamp timeutil.TimeUTC) {
		loggerMessage := logger_message.LoggerMessage{
			Service:   service,
			Level:     level.String(),
			Message:   msg,
			Timestamp: timestamp,
		}

		err := publisher.Publish(loggerMessage)
		if err != nil {
			// the logger would recurse into this sink
			fmt.Printf("Failed to publish log message to RabbitMQ: %v\n", err)
		}
	}
}
