// Package folio computes portfolio level metrics from historical daily prices.
//
// The package is organized as a small pipeline:
//   - Price alignment: an [Aligner] fetches adjusted close prices from a
//     [Provider], restricts them to the trading calendar defined by a
//     benchmark, and forward fills the gaps into a [PriceTable].
//   - Valuation: [ValueAllocation] values a buy-and-hold allocation, and
//     [ValueOrders] (or [Simulate]) replays a ledger of BUY/SELL [Order]s
//     into daily cash and share positions.
//   - Statistics: [ComputeStats] derives cumulative return, average and
//     standard deviation of daily returns, and the annualized Sharpe ratio.
//   - Optimization: [Optimize] searches the allocation that maximizes the
//     Sharpe ratio, with weights in [0,1] summing to 1.
//
// Computations never fail on bad data: missing prices and degenerate series
// propagate as NaN so that one bad symbol degrades a report instead of
// aborting it. Only structural problems (shape mismatch, empty tables,
// provider failures) are returned as errors.
//
// Data retrieval, order file parsing, rendering and plotting live in the
// sub-packages and in the `fol` command line tool.
package folio
