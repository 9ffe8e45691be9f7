// Package tradebook computes positions, transaction costs and profit/loss of a
// securities trading account from plain tables.
//
// The core functionalities include:
//   - Fee Schedule: a (broker, market, product type) keyed table of rates, with
//     default rates when no entry matches.
//   - Security Directory: security codes resolved to a name, an exchange and a
//     product type, inferred from the code prefix when no table is supplied.
//   - Fee Calculation: the per-trade commission, taxes and fees, rounded to cents.
//   - Position Ledger: a day-by-day walk over every trade and price date that
//     maintains weighted-average-cost positions and emits one daily PnL record per
//     security and day.
//   - Reports: read-side projections of the ledger output such as current
//     positions, per-security history, exchange rollups and daily reviews.
//
// A [Session] ties these together for a single caller: it loads the tables,
// computes fees, walks the ledger and exposes the reports. Nothing is shared
// between sessions.
package tradebook
