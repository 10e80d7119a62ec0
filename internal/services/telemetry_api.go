package services

import (
	"context"
	"time"

	"github.com/fleetsync/server/internal/geotab"
)

// TelemetryAPI is the provider boundary the sync pipeline depends on.
// *geotab.Client satisfies it; tests substitute a stub.
type TelemetryAPI interface {
	Authenticate(ctx context.Context, creds geotab.Credentials) (*geotab.Session, error)
	ListDevices(ctx context.Context, session *geotab.Session) ([]geotab.DeviceRecord, error)
	LatestReading(ctx context.Context, session *geotab.Session, deviceID, diagnosticID string, windowStart time.Time) (*geotab.Reading, error)
}
