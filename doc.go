// Package attribution reconstructs the recent history of a brokerage
// portfolio and measures its performance against a personalized benchmark.
//
// The input is what retail institutions actually export: the securities on
// file, today's holdings, and a raw transaction ledger. From these the
// engine works backwards to the state of the portfolio at the start of the
// analysis window, then forward again month by month:
//
//   - Position Reconstruction: undoing every transaction after the window
//     start recovers the opening positions and cash, in exact decimal
//     arithmetic so the walk is reversible.
//   - Cashflow Classification: explicit deposit/withdrawal markers are
//     reconciled against a monthly accounting identity, so institutions
//     that hide external money inside sweep purchases still produce a
//     usable flow series.
//   - Monthly Snapshots: each month-end is valued by compounding market
//     return indices onto anchor prices.
//   - Benchmark Attribution: the opening book is mapped onto liquid ETF
//     proxies and replayed as a two-bucket shadow portfolio receiving the
//     same external flows.
//   - Returns and Fees: simple, annualized, and money-weighted returns
//     (XIRR with a Modified Dietz fallback), plus explicit fees and the
//     implicit expense-ratio drag.
//
// This package is the foundational logic for the `pra` command-line tool.
package attribution
