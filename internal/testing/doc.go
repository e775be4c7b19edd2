// Package testing provides test doubles, builders and fixtures shared by the
// puppetctl test suites.
//
//   - MockCloud: Func-field implementation of ec2.InfrastructureManager with
//     call tracking.
//   - CloudFixture: an in-memory EC2 region wired into a MockCloud.
//   - MockRemote: Func-field SSH runner with call tracking.
//   - MockPrompter: testify mock for operator prompts.
//   - Recorder: one ordered log of cloud and remote operations, for tests
//     that assert on sequencing.
//   - ConfigBuilder: fluent builder for test configs.
//
// Usage:
//
//	fixture := testing.NewCloudFixture()
//	fixture.AddInstance(testing.Master("i-1", "alpha"))
//	cloud := fixture.Mock()
package testing
