// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package host exposes the auth service to an embedding application as
// named commands exchanging JSON.
//
// A Dispatcher maps command names to handlers. RegisterAuthHandlers installs
// register, verify_credential, login, logout and whoami. Serve runs a
// dispatcher over a line-oriented stream, one JSON request per line.
//
// A response with ok=true means the command ran; a policy rejection or a
// failed login is still ok=true with success=false in the result. ok=false
// is reserved for hard failures, reported with a stable error code.
package host
