// Package provisioning launches EC2 instances and turns them into Puppet
// masters and slaves.
//
// # Components
//
//   - Launcher: runs one instance, waits for it to leave "pending", names it.
//   - Waiter: polls the cloud API and the SSH probe with bounded backoff.
//   - Registry: finds masters and slaves through their puppet:* tags.
//   - Installer: runs the Puppet package installs over SSH.
//   - Provisioner: the create-master and create-slaves flows built on the above.
//
// # Core Types
//
// Context carries the configuration, the Session, the cloud client, the
// remote runner, the prompter and the observer. Session records the master
// and slaves created during one invocation. MasterRef says how the caller
// identified a master.
package provisioning
