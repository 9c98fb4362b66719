package status

import "github.com/Veraticus/worktime/pkg/interfaces"

// Reporter feeds notification delivery progress into the status line.
// A nil indicator makes every call a no-op.
type Reporter struct {
	indicator *Indicator
}

var _ interfaces.StatusReporter = (*Reporter)(nil)

// NewReporter creates a reporter for indicator.
func NewReporter(indicator *Indicator) *Reporter {
	return &Reporter{indicator: indicator}
}

func (r *Reporter) set(s Status) {
	if r.indicator != nil {
		r.indicator.SetStatus(s)
	}
}

// ReportSending marks a threshold notification as in flight.
func (r *Reporter) ReportSending() { r.set(StatusSending) }

// ReportSuccess marks the last notification as delivered.
func (r *Reporter) ReportSuccess() { r.set(StatusSuccess) }

// ReportFailure marks the last notification as failed.
func (r *Reporter) ReportFailure() { r.set(StatusFailed) }
