// Package testing provides test utilities, builders, and fakes for unit tests.
//
// This package centralizes common testing patterns to avoid duplication across test files:
//   - ConfigBuilder: Fluent builder for creating test configurations
//   - FakeRunner: Scripted host.Runner that records every command
//   - MemFS: In-memory host.FileSystem
//   - MockBuckets: testify mock for the backup bucket client
//
// Usage:
//
//	cfg := testutil.NewConfigBuilder().
//	    WithDomain("hr.example.com").
//	    WithBackup(config.ProviderWasabi, config.FrequencyDaily).
//	    Build()
//
//	runner := testutil.NewFakeRunner().
//	    On("apt-get -q update", testutil.Fail(100, "E: Could not get lock /var/lib/apt/lists/lock"))
package testing
