// Package finagle computes the Australian capital gains tax position of a
// share portfolio.
//
// The core functionalities include:
//   - Transactions: buys and sells of whole shares, recorded with their
//     price and brokerage fee, and ordered by date and time.
//   - Lot matching: every buy opens a lot, every sell consumes the oldest
//     open lots of its ticker first (FIFO). Fees are spread per share over
//     the cost base and the proceeds.
//   - Discount: gains on shares held more than 12 months are halved, after
//     capital losses have been applied to non-discount gains first.
//   - Reports: lot matches are summarized per financial year, from 1 July
//     to 30 June.
//   - Encoding: transactions export to CSV, JSON and JSONL.
//
// This package is the foundational logic of the finagle command-line tool and
// of its HTTP API. Storage, import of broker files and rendering live in the
// store, importer and renderer packages.
package finagle
