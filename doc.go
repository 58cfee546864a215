// Package realized computes realized profit-and-loss for a brokerage
// trading history. Given a chronological stream of buy/sell executions
// (stocks, single options, and multi-leg option strategies) it reconstructs
// positions, matches closing trades against opening lots using FIFO,
// synthesizes expirations for instruments never explicitly closed, and
// emits an auditable per-trade ledger plus a snapshot of remaining open
// positions.
//
// The core functionalities include:
//   - Lot Ledger: per-instrument open lots keyed by a stable matching key,
//     consumed oldest first by the pure FIFO matcher.
//   - Report Sequencing: a single chronological fold over the trade stream
//     maintaining running P&L, cash, and fee totals, with strategy
//     parent/leg reconciliation.
//   - Expiration Synthesis: engine-generated closing trades for options
//     that lapsed without an explicit close, preserving strategy linkage.
//   - Open-Position Grouping: reconstruction of calendar, vertical, and
//     diagonal spreads from final lot state, with roll credits folded into
//     long-leg cost bases.
//
// The engine is a pure, sequential fold over in-memory batches: parsing of
// broker exports lives in the broker package, rendering in the renderer
// package, and the CLI in cmd. All arithmetic uses exact decimals; floats
// never enter the core.
package realized
