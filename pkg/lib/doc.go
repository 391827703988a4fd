// Package lib provides a Go SDK to create REPLs programmatically.
//
// It does the same as the replup CLI without shelling out to the binary: it
// allocates an anonymous workspace, uploads a directory tree to it and runs its
// entry file when present.
//
// # Quick Start
//
//	client, err := lib.New(lib.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := client.Up(ctx, lib.UpOpts{Dir: "./my-app"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.URL)
//	if res.PortOpened {
//	    fmt.Println(res.WebURL)
//	}
//
// # Progress
//
// By default nothing is printed. Set [Config].Output to get the same step
// display and program output the CLI prints.
//
// # Error Handling
//
// Errors can be inspected with [errors.Is] against the step that failed:
// [ErrBootstrap], [ErrUpload], [ErrToken], [ErrConnect] and [ErrExecution].
//
// # Thread Safety
//
// A [Client] is safe for concurrent use, every Up call has its own session.
package lib
