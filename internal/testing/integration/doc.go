// Package integration holds helpers for tests that touch the environment:
// isolating connector env vars and running against a live Humio cluster
// when one is configured.
//
// Live tests are opt-in. Set HUMIO_TEST_URL and HUMIO_TEST_API_KEY (and
// optionally HUMIO_TEST_REPOSITORY) to enable them, and build with the
// integration tag:
//
//	go test -tags integration ./internal/humio/...
package integration
