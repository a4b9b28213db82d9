// Package agent implements the run loop of an autonomous agent.
//
// An Agent wires three collaborators together: event sources feeding a
// bounded envelope queue, a strategy deciding how to react to each envelope,
// and a system executor carrying out the resulting work. The loop applies
// strategy actions strictly in emission order and tracks lifecycle phases
// (idle, running, draining, stopped, failed).
//
// A minimal agent:
//
//	a := agent.New(myStrategy, func(o *agent.Options) {
//		o.Name = "worker"
//	})
//	system.Register(a.Executor(), mySystem)
//	_ = a.AddSource(agent.NewTickerSource("clock", time.Second, nil))
//	err := a.Run(ctx)
//
// Run blocks until the context is cancelled, Shutdown is called, a terminate
// instruction arrives, the strategy requests a stop, or a source fails.
package agent
