// Package mcpregistry manages named connections to MCP tool servers that run
// as local subprocesses speaking the Model Context Protocol over stdio.
//
// A Registry maps caller-chosen connection ids to live client sessions. Each
// Connect spawns a server, performs the MCP handshake and keeps the session
// until Disconnect shuts it down. Operations on different ids run
// concurrently and never wait on each other's I/O.
//
// # Basic Usage
//
//	reg := mcpregistry.New(mcpregistry.WithLogger(slog.Default()))
//	defer reg.Close(ctx)
//
//	err := reg.Connect(ctx, "bmi", mcpregistry.LaunchSpec{Command: "bmi-server"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	tools, err := reg.ListTools(ctx, "bmi")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := reg.CallTool(ctx, "bmi", "calculate_bmi", map[string]any{
//	    "height": 1.75,
//	    "weight": 70,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if mcpregistry.IsToolError(result) {
//	    log.Printf("tool failed: %s", mcpregistry.ResultText(result))
//	}
//
// # Lifecycle
//
// A connection id can be reused once Disconnect returns. The registry never
// tears sessions down on its own: servers keep running until Disconnect or
// Close is called. WithRegistry scopes a registry to a callback:
//
//	err := mcpregistry.WithRegistry(ctx, func(reg mcpregistry.Registry) error {
//	    return reg.ConnectServers(ctx, servers)
//	}, mcpregistry.WithHandshakeTimeout(10*time.Second))
//
// # Error Handling
//
// Registry errors are typed; sentinels match through errors.Is:
//
//	err := reg.Connect(ctx, "bmi", spec)
//	switch {
//	case errors.Is(err, mcpregistry.ErrAlreadyConnected):
//	    // id is in use
//	case err != nil:
//	    if launchErr, ok := errors.AsType[*mcpregistry.LaunchError](err); ok {
//	        log.Fatalf("could not start %s: %v", launchErr.Command, launchErr.Err)
//	    }
//	}
//
// A tool that runs and fails is not an error: CallTool returns its result
// with IsError set.
package mcpregistry
