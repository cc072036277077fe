// SPDX-License-Identifier: MPL-2.0

// Package xec is a unified remote command-execution engine: a single,
// composable command-builder surface for running shell commands against
// the local host, remote hosts over SSH, containers in a container
// runtime, and pods in a Kubernetes-compatible cluster.
//
//	eng := xec.New()
//	defer eng.Dispose(context.Background())
//
//	res, err := eng.Local().Exec(ctx, "echo", "hello")
//
//	res, err = eng.SSH(xec.SSHOptions{
//		Host:     "build01",
//		Username: "deploy",
//		Auth:     xec.AgentAuth{},
//	}).Exec(ctx, "uptime")
//
// Every builder method returns a new, independent Builder; the zero-value
// Engine registers no adapters and is not usable — always construct one
// via New.
package xec
