// Package testrail is a read-only client for the TestRail REST API (v2).
//
// TestRail embeds the endpoint path inside the query string
// ({base}/index.php?/api/v2/{endpoint}), so additional query parameters are
// appended with "&" rather than a fresh "?". Authentication is HTTP basic
// with the user's email and API key.
//
// The client never writes back to TestRail. Every call takes a context and
// fails immediately on a non-2xx response; retry policy is the caller's
// concern and deliberately absent here.
package testrail
