// Package mgmtflow runs management task chains against a server exposing
// the DMR management API.
//
// The Service wires a dispatcher, the run journal, metrics, tracing and
// message delivery around flow sequencers:
//
//	srv, _ := mgmtflow.New(ctx, mgmtflow.WithConfig(cfg))
//	stats, err := srv.Deployments().Upload(ctx, attachment)
//
// Task families live under tasks/; the engine itself is in flow.
package mgmtflow
