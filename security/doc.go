// Package security builds client TLS settings for connections to the
// producer sidecars and the speaker store.
//
//	tlsCfg, err := cfg.TLS.ClientConfig()
//	transport.TLSClientConfig = tlsCfg
package security
