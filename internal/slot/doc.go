// Package slot decides which configured time-of-day slot a run may claim.
//
// A Calendar lists the hours of the day on which a poll is eligible and the
// tolerance radius around each hour:00:00 instant. A Ledger remembers which
// (day, hour) pairs have already fired so a slot fires at most once per day,
// however many times the process is invoked inside its window.
//
// Select is pure: it reads a calendar and a ledger snapshot and never
// mutates either.
package slot
