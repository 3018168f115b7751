// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

var (
	// root
	verbose bool
	// root
	profile bool
	// root
	pprofPort uint16
	// root
	serviceURL string
	// analyze
	interactive bool
	// register
	username string
	// serve
	selfTLS bool
	// serve
	tlsCert string
	// serve
	tlsKey string
	// serve
	port uint16
)
