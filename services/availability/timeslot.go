package availability

import (
	"fmt"
	"strings"
	"time"

	"fieldops/models"
)

const (
	slotDateLayout     = "2006-01-02"
	slotLabelSeparator = " - "
)

// Accepted clock layouts for slot labels, tried in order.
var slotTimeLayouts = []string{"3:04 PM", "03:04 PM", "15:04"}

// TimeSlot is a half-open interval [Start, End) anchored to a calendar date.
// Zero-length slots are valid; they simply cannot overlap anything.
type TimeSlot struct {
	Date       string    `json:"date"`
	StartLabel string    `json:"startLabel"`
	EndLabel   string    `json:"endLabel"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
}

// ParseSlot builds a TimeSlot from a date ("2026-02-04") and a label of the
// form "10:00 AM - 12:00 PM". Labels that do not split into exactly two
// parseable times fail with ErrInvalidSlotFormat; they are never silently
// treated as zero-length.
func ParseSlot(date, label string) (TimeSlot, error) {
	parts := strings.Split(label, slotLabelSeparator)
	if len(parts) != 2 {
		return TimeSlot{}, fmt.Errorf("%w: label %q must be two times separated by %q",
			ErrInvalidSlotFormat, label, slotLabelSeparator)
	}
	startLabel := strings.TrimSpace(parts[0])
	endLabel := strings.TrimSpace(parts[1])

	start, err := parseClock(date, startLabel)
	if err != nil {
		return TimeSlot{}, err
	}
	end, err := parseClock(date, endLabel)
	if err != nil {
		return TimeSlot{}, err
	}
	if end.Before(start) {
		return TimeSlot{}, fmt.Errorf("%w: slot %q on %s ends before it starts",
			ErrInvalidSlotFormat, label, date)
	}
	return TimeSlot{
		Date:       date,
		StartLabel: startLabel,
		EndLabel:   endLabel,
		Start:      start,
		End:        end,
	}, nil
}

func parseClock(date, clock string) (time.Time, error) {
	for _, layout := range slotTimeLayouts {
		if t, err := time.Parse(slotDateLayout+" "+layout, date+" "+clock); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognised time %q on date %q",
		ErrInvalidSlotFormat, clock, date)
}

// WindowSlot wraps an absolute [start, end) window as a TimeSlot, used for
// the coarse next-24h aggregation.
func WindowSlot(start, end time.Time) TimeSlot {
	return TimeSlot{
		Date:       start.Format(slotDateLayout),
		StartLabel: start.Format("3:04 PM"),
		EndLabel:   end.Format("3:04 PM"),
		Start:      start,
		End:        end,
	}
}

// Overlaps reports whether two slots share any time. Intervals are
// half-open: touching endpoints do not overlap. The exact inequality form
// here is the conflict predicate the whole engine rests on.
func (s TimeSlot) Overlaps(other TimeSlot) bool {
	return s.Start.Before(other.End) && other.Start.Before(s.End)
}

// NormalizeBookingSlot produces a TimeSlot from whichever slot shape a
// booking record carries: structured startTime/endTime timestamps win over
// the legacy scheduledDate + scheduledTime label. A record with neither
// shape (or an unparsable label) is a data-quality problem for the caller
// to log and skip, not a conflict.
func NormalizeBookingSlot(b models.Booking) (TimeSlot, error) {
	switch {
	case b.StartTime != nil && b.EndTime != nil:
		if b.EndTime.Before(*b.StartTime) {
			return TimeSlot{}, fmt.Errorf("%w: booking %s ends before it starts",
				ErrInvalidSlotFormat, b.ID)
		}
		return TimeSlot{
			Date:       b.StartTime.Format(slotDateLayout),
			StartLabel: b.StartTime.Format("3:04 PM"),
			EndLabel:   b.EndTime.Format("3:04 PM"),
			Start:      *b.StartTime,
			End:        *b.EndTime,
		}, nil
	case b.ScheduledDate != "" && b.ScheduledTime != "":
		return ParseSlot(b.ScheduledDate, b.ScheduledTime)
	default:
		return TimeSlot{}, fmt.Errorf("%w: booking %s carries no slot fields",
			ErrInvalidSlotFormat, b.ID)
	}
}
