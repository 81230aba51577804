// Package administrationservice contains the FatCow implementation of the
// protocol administration module: the two-phase administrator handoff and the
// pause gate consulted by the ledger and marketplace engines.
//
// The module keeps domain/application logic decoupled from runtime/platform
// concerns through ports and adapter composition.
package administrationservice
