package export

import (
	"errors"
	"fmt"
	"io"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/username/recur/internal/calendar"
	"github.com/username/recur/pkg/recurrence"
)

// uidNamespace makes event UIDs stable across exports of the same schedule
var uidNamespace = uuid.MustParse("6f1c7a52-3d0b-4e8e-9a51-2b7c0f6a9e14")

// Exporter renders the leaf schedules of a calendar as an iCalendar document
type Exporter struct {
	productID string
	logger    *zap.Logger
	now       func() time.Time
}

// NewExporter creates a new Exporter
func NewExporter(productID string, logger *zap.Logger) *Exporter {
	return &Exporter{
		productID: productID,
		logger:    logger,
		now:       time.Now,
	}
}

// Build creates one all-day recurring VEVENT per leaf schedule. Combinations
// have no RRULE form and are skipped.
func (e *Exporter) Build(cal calendar.Calendar) (*ics.Calendar, int, error) {
	out := ics.NewCalendar()
	out.SetMethod(ics.MethodPublish)
	out.SetProductId(e.productID)

	stamp := e.now().UTC()
	exported := 0

	for _, name := range cal.Names() {
		p, err := cal.Lookup(name)
		if err != nil {
			return nil, 0, err
		}

		rec, ok := p.(*recurrence.Recurrence)
		if !ok {
			e.logger.Info("Skipping combination",
				zap.String("name", name))
			continue
		}

		rr, err := ToRRule(rec)
		if err != nil {
			if errors.Is(err, ErrNotExportable) {
				e.logger.Warn("Skipping schedule",
					zap.String("name", name),
					zap.Error(err))
				continue
			}
			return nil, 0, fmt.Errorf("failed to export %s: %w", name, err)
		}

		event := out.AddEvent(EventUID(name))
		event.SetDtStampTime(stamp)
		event.SetSummary(name)
		event.SetDescription(rec.String())
		event.SetAllDayStartAt(rr.OrigOptions.Dtstart)
		event.AddRrule(rr.OrigOptions.RRuleString())
		exported++

		e.logger.Debug("Schedule exported",
			zap.String("name", name),
			zap.String("rrule", rr.OrigOptions.RRuleString()))
	}

	return out, exported, nil
}

// Write builds the document and serializes it to w
func (e *Exporter) Write(w io.Writer, cal calendar.Calendar) (int, error) {
	doc, exported, err := e.Build(cal)
	if err != nil {
		return 0, err
	}
	if _, err := io.WriteString(w, doc.Serialize()); err != nil {
		return 0, fmt.Errorf("failed to write calendar: %w", err)
	}
	return exported, nil
}

// EventUID returns the stable UID used for the named schedule
func EventUID(name string) string {
	return uuid.NewSHA1(uidNamespace, []byte(name)).String() + "@recur"
}
