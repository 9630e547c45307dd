package export

import (
	"context"
	"errors"
	"fmt"

	"hearingwatch/logging"
	"hearingwatch/types"

	"go.uber.org/zap"
)

// Exporter renders the report once and hands it to every sink.
type Exporter struct {
	sinks  []Sink
	logger *zap.Logger
}

func NewExporter(logger *zap.Logger, sinks ...Sink) *Exporter {
	return &Exporter{sinks: sinks, logger: logging.NopIfNil(logger)}
}

// Export writes events, already in report order, to all sinks. Every sink is
// attempted; the returned error joins the failures.
func (x *Exporter) Export(ctx context.Context, events []*types.CommitteeEvent, committees map[string]types.Committee) error {
	report := Render(events, committees)

	var errs []error
	for _, sink := range x.sinks {
		if err := sink.Write(ctx, report); err != nil {
			x.logger.Error("export failed", zap.String("sink", sink.Name()), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s sink: %w", sink.Name(), err))
			continue
		}
		x.logger.Info("exported report",
			zap.String("sink", sink.Name()),
			zap.Int("events", len(events)),
			zap.Int("bytes", len(report)))
	}
	return errors.Join(errs...)
}
