// Package marketplaceservice contains the FatCow fixed-price marketplace:
// listings with token escrow, exact-amount purchases with proportional fee
// payouts, cancellation, fee configuration and the retained-balance checkout.
//
// Every outward effect of a trade is queued through the outbox and delivered
// after the local state commits.
package marketplaceservice
