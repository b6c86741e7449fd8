package storage

import (
	"context"
	"errors"
	"fmt"

	"property-parser/models"
	"property-parser/utils"
)

// Sink receives each page's records. appendMode is false for the first
// page of a run and true afterwards.
type Sink interface {
	Append(ctx context.Context, records []models.ListingRecord, appendMode bool) error
	Close() error
}

// MultiSink writes to a primary sink and mirrors the same records into any
// number of secondary sinks. Only the primary decides success; mirror
// failures are logged and the crawl carries on.
type MultiSink struct {
	Primary Sink
	Mirrors []Sink
	Log     utils.LogFunc
}

func (m *MultiSink) Append(ctx context.Context, records []models.ListingRecord, appendMode bool) error {
	if err := m.Primary.Append(ctx, records, appendMode); err != nil {
		return err
	}
	for _, mirror := range m.Mirrors {
		if err := mirror.Append(ctx, records, appendMode); err != nil && m.Log != nil {
			m.Log(utils.LevelWarn, "Mirror write failed (%T): %v", mirror, err)
		}
	}
	return nil
}

func (m *MultiSink) Close() error {
	var errs []error
	if err := m.Primary.Close(); err != nil {
		errs = append(errs, err)
	}
	for _, mirror := range m.Mirrors {
		if err := mirror.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%T: %w", mirror, err))
		}
	}
	return errors.Join(errs...)
}
