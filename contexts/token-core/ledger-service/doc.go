// Package ledgerservice contains the FatCow implementation of the
// single-ownership token ledger: mint, batch transfer with operator
// authorization, balance callbacks and the operator registry.
//
// The module keeps domain/application logic decoupled from runtime/platform
// concerns through ports and adapter composition.
package ledgerservice
