package report

import "time"

// NextFriday returns the first Friday strictly after today. The search
// starts at today+1, so a Friday input yields the Friday a week out.
func NextFriday(today time.Time) time.Time {
	d := today.AddDate(0, 0, 1)
	for d.Weekday() != time.Friday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// CompactDate is the form used in filenames and subjects.
func CompactDate(t time.Time) string {
	return t.Format("20060102")
}

// SlashDate is the form injected into the workbook context as "date".
func SlashDate(t time.Time) string {
	return t.Format("2006/01/02")
}

// ISODate is the form used for "today" and "next_friday" in the workbook
// context.
func ISODate(t time.Time) string {
	return t.Format("2006-01-02")
}
