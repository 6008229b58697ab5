// Package analyticsutils builds an analytics.Publisher from configuration.
package analyticsutils

import (
	"context"
	"fmt"

	"github.com/papercomputeco/leadline/pkg/analytics"
	"github.com/papercomputeco/leadline/pkg/analytics/kafka"
	"github.com/papercomputeco/leadline/pkg/analytics/nop"
	"github.com/papercomputeco/leadline/pkg/analytics/postgres"
	"github.com/papercomputeco/leadline/pkg/analytics/sqlite"
)

// Provider names.
const (
	ProviderNone     = "none"
	ProviderSQLite   = "sqlite"
	ProviderPostgres = "postgres"
	ProviderKafka    = "kafka"
)

type NewPublisherOpts struct {
	ProviderType string
	Target       string
	Topic        string
}

func NewPublisher(ctx context.Context, o *NewPublisherOpts) (analytics.Publisher, error) {
	switch o.ProviderType {
	case ProviderNone, "":
		return nop.NewPublisher(), nil
	case ProviderSQLite:
		return sqlite.NewPublisher(ctx, o.Target)
	case ProviderPostgres:
		return postgres.NewPublisher(ctx, o.Target)
	case ProviderKafka:
		return kafka.NewPublisher(o.Target, o.Topic)
	default:
		return nil, fmt.Errorf("unsupported analytics provider: %s", o.ProviderType)
	}
}
