// Package layer defines the encoder and decoder contracts, their architecture
// specs and the backbone registry
package layer
