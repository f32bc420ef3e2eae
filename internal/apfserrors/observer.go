package apfserrors

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/go-forensics/apfs/internal/types"
)

// Observer receives a notification after every physical read or cache
// lookup a reader handle performs. op identifies the operation
// ("blockio.ReadBlock", "btree.DecodeNode", "objectmap.Lookup", ...), addr
// and size describe what was read, and d is how long it took. Observer is
// never required: the zero value of a handle uses NopObserver.
type Observer func(op string, addr types.Paddr, size int, d time.Duration)

// NopObserver discards every notification. It is the default Observer.
func NopObserver(string, types.Paddr, int, time.Duration) {}

// LogrusObserver adapts Observer notifications to a logrus.Logger, one Debug
// entry per call. Callers who want visibility into I/O volume or cache
// behavior without the core importing a logging framework directly can wire
// this in with WithObserver(apfserrors.LogrusObserver(logger)).
func LogrusObserver(logger *logrus.Logger) Observer {
	return func(op string, addr types.Paddr, size int, d time.Duration) {
		logger.WithFields(logrus.Fields{
			"op":       op,
			"addr":     int64(addr),
			"size":     size,
			"duration": d,
		}).Debug("apfs read")
	}
}
