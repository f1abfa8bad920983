// Package flow implements the task-orchestration engine: an ordered list of
// tasks applied one after another to a shared, mutable execution Context.
//
// A chain is built by the caller and executed by a Sequencer:
//
//	fctx := flow.NewContext(progress)
//	out, err := flow.Sequential(ctx, fctx,
//		deployment.NewCheckDeployment(d, "app.war"),
//		deployment.NewUploadOrReplace(env, d, "app.war", "app.war", file, true),
//	)
//
// The first failing task stops the chain and its error is returned as is.
// Adjacent tasks may hand scalar values to each other through the Context
// stack (see PushStatus / PopStatus).
package flow
