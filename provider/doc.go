// Package provider talks to the GitHub identity provider on behalf of the gateway:
// it builds the authorization URL, exchanges authorization codes for access tokens,
// probes tokens against the API and revokes an application's grant.
//
// Every outbound call runs under the configured timeout unless the caller's context
// already carries an earlier deadline. Transport failures and timeouts are reported as
// errors.ErrUpstreamUnavailable; unexpected HTTP statuses as *StatusError.
package provider
