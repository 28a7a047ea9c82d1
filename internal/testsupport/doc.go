// Package testsupport provides shared test fixtures: temp-dir configs, store
// setup, and deterministic fakes for the AniDB transport and clock.
package testsupport
