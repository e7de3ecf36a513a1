package httpclient

import "context"

// Requester is the pipeline surface consumed by the console layer. It exists
// so tests can substitute a scripted implementation for the real pipeline.
type Requester interface {
	// DoRequest runs one request through the pipeline. See Client.DoRequest
	// for the error contract.
	DoRequest(ctx context.Context, opts RequestOptions) ([]byte, error)
}

// Compile-time check that the pipeline satisfies its consumer interface.
var _ Requester = &Client{}
