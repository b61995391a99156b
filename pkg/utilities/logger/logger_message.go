package logger_message

import (
	"satch-client/pkg/utilities"
	"satch-client/pkg/utilities/timeutil"
)

type LoggerMessage struct {
	Service   string           `json:"service"`
	Level     string           `json:"level"`
	Message   string           `json:"message"`
	Timestamp timeutil.TimeUTC `json:"timestamp"`
}

func (lm LoggerMessage) Serialize() ([]byte, error) {
	return utilities.Serialize(lm)
}
