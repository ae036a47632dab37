// Package ticketview derives everything the portal shows about a ticket
// collection: the filtered and sorted list, the Kanban lanes, the dashboard
// trend series and counters, and the flat rows used for spreadsheet export.
//
// Every function here is pure over an in-memory snapshot. Callers re-run the
// whole pipeline whenever the snapshot changes (manual refresh or realtime
// push), so no derived value is cached between calls.
package ticketview
