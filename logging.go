package aeronet

import (
	"github.com/sirupsen/logrus"
)

// NewLogrusLogFunc adapts a *logrus.Entry to the LogFunc shape, so a
// Listener can log connection lifecycle and protocol events through the
// same structured logger (and any persistent fields already attached to
// entry, e.g. WithField("instance", id)) the rest of an embedding
// application uses. A nil entry falls back to logrus.StandardLogger().
func NewLogrusLogFunc(entry *logrus.Entry) LogFunc {
	if entry == nil {
		entry = logrus.NewEntry(logrus.StandardLogger())
	}
	return func(level string, msg string) {
		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			lvl = logrus.InfoLevel
		}
		entry.Log(lvl, msg)
	}
}
