package application

import "time"

const isoDate = "2006-01-02"

// DateRange is an inclusive calendar range in ISO YYYY-MM-DD form.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// RangeResolver turns relative date expressions into concrete ranges. The
// reference instant is injected so results are reproducible in tests.
type RangeResolver struct {
	now func() time.Time
}

// NewRangeResolver builds a resolver anchored on nowFn. A nil nowFn falls
// back to time.Now.
func NewRangeResolver(nowFn func() time.Time) *RangeResolver {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &RangeResolver{now: nowFn}
}

// Today returns the current date as both ends of the range.
func (r *RangeResolver) Today() DateRange {
	d := r.now().Format(isoDate)
	return DateRange{Start: d, End: d}
}

// Yesterday returns the previous calendar day.
func (r *RangeResolver) Yesterday() DateRange {
	d := r.now().AddDate(0, 0, -1).Format(isoDate)
	return DateRange{Start: d, End: d}
}

// LastNDays returns {start: today - n days, end: today}.
func (r *RangeResolver) LastNDays(n int) DateRange {
	if n < 1 {
		n = 1
	}
	now := r.now()
	return DateRange{
		Start: now.AddDate(0, 0, -n).Format(isoDate),
		End:   now.Format(isoDate),
	}
}

// ThisMonth covers the first of the current month through today.
func (r *RangeResolver) ThisMonth() DateRange {
	now := r.now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return DateRange{Start: first.Format(isoDate), End: now.Format(isoDate)}
}

// LastMonth covers the previous full calendar month.
func (r *RangeResolver) LastMonth() DateRange {
	now := r.now()
	firstOfThis := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastOfPrev := firstOfThis.AddDate(0, 0, -1)
	firstOfPrev := time.Date(lastOfPrev.Year(), lastOfPrev.Month(), 1, 0, 0, 0, 0, now.Location())
	return DateRange{Start: firstOfPrev.Format(isoDate), End: lastOfPrev.Format(isoDate)}
}
