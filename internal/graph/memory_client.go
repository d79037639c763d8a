package graph

import (
	"context"
	"sync"
)

// MemoryClient is a scripted in-memory implementation of the Client interface used
// for unit testing query construction and decoding without a running database.
// Reads and writes are answered from FIFO queues of canned responses.
type MemoryClient struct {
	mu           sync.Mutex
	writeCalls   []ExecutedQuery
	readCalls    []ExecutedQuery
	reads        []canned
	writes       []canned
	err          error
	connectivity error
}

type canned struct {
	res Result
	err error
}

// ExecutedQuery captures a statement and parameters executed against the graph.
type ExecutedQuery struct {
	Query  string
	Params map[string]any
}

// NewMemoryClient instantiates the in-memory client with no canned results.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{}
}

// WithError configures the client to return the provided error for subsequent calls.
func (m *MemoryClient) WithError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithConnectivityError forces VerifyConnectivity to return the supplied error.
func (m *MemoryClient) WithConnectivityError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectivity = err
	return m
}

// PushReadResult appends a result that will be returned on the next ExecuteRead call.
func (m *MemoryClient) PushReadResult(res Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads = append(m.reads, canned{res: res})
}

// PushReadError appends an error that will be returned on the next ExecuteRead call.
func (m *MemoryClient) PushReadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads = append(m.reads, canned{err: err})
}

// PushWriteResult appends a result that will be returned on the next ExecuteWrite call.
func (m *MemoryClient) PushWriteResult(res Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = append(m.writes, canned{res: res})
}

func (m *MemoryClient) ExecuteWrite(ctx context.Context, query string, params map[string]any) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if m.err != nil {
		return Result{}, m.err
	}

	m.writeCalls = append(m.writeCalls, ExecutedQuery{
		Query:  query,
		Params: cloneMap(params),
	})
	return pop(&m.writes)
}

func (m *MemoryClient) ExecuteRead(ctx context.Context, query string, params map[string]any) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if m.err != nil {
		return Result{}, m.err
	}

	m.readCalls = append(m.readCalls, ExecutedQuery{
		Query:  query,
		Params: cloneMap(params),
	})
	return pop(&m.reads)
}

func (m *MemoryClient) VerifyConnectivity(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connectivity
}

func (m *MemoryClient) Close(context.Context) error {
	return nil
}

// WriteCalls returns a snapshot of executed write queries.
func (m *MemoryClient) WriteCalls() []ExecutedQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExecutedQuery(nil), m.writeCalls...)
}

// ReadCalls returns a snapshot of executed read queries.
func (m *MemoryClient) ReadCalls() []ExecutedQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExecutedQuery(nil), m.readCalls...)
}

func pop(queue *[]canned) (Result, error) {
	if len(*queue) == 0 {
		return Result{}, nil
	}
	next := (*queue)[0]
	*queue = (*queue)[1:]
	return next.res, next.err
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
