// Package common contains shared constants and sentinel errors used across
// the Kadrio client components.
package common

// AccessTokenHeaderName is the HTTP header carrying the access token on
// outbound API requests.
const AccessTokenHeaderName = "Authorization"

// DeviceIDHeaderName is the HTTP header carrying the per-install device
// identifier on outbound API requests.
const DeviceIDHeaderName = "X-Device-Id"
