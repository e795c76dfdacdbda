package cache

import (
	"context"
	"time"

	portsrepo "github.com/SscSPs/practice_ledger_app/internal/core/ports/repositories"
)

// Noop never stores anything. It is used when no Redis URL is configured.
type Noop struct{}

var _ portsrepo.ReportCache = Noop{}

func (Noop) Get(context.Context, string, any) (bool, error)        { return false, nil }
func (Noop) Set(context.Context, string, any, time.Duration) error { return nil }
func (Noop) Invalidate(context.Context) error                      { return nil }
