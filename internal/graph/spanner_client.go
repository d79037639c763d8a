package graph

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/spanner"
	sppb "cloud.google.com/go/spanner/apiv1/spannerpb"
	"google.golang.org/api/iterator"
)

// SpannerOptions configures a Cloud Spanner Graph client.
type SpannerOptions struct {
	// Database is the fully qualified name:
	// projects/<project>/instances/<instance>/databases/<database>.
	Database    string
	MaxSessions int
}

// NewSpannerClient connects to a Spanner database that exposes a property graph.
// Reads use single-use read-only snapshots, one per query.
func NewSpannerClient(ctx context.Context, opts SpannerOptions) (Client, error) {
	if opts.Database == "" {
		return nil, ErrMissingDatabase
	}

	cfg := spanner.ClientConfig{SessionPoolConfig: sessionPoolConfig(opts.MaxSessions)}

	client, err := spanner.NewClientWithConfig(ctx, opts.Database, cfg)
	if err != nil {
		return nil, fmt.Errorf("create spanner client: %w", err)
	}

	c := &spannerClient{client: client}
	if err := c.VerifyConnectivity(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("verify graph connectivity: %w", err)
	}
	return c, nil
}

// sessionPoolConfig caps the pool at maxSessions. The library default keeps
// 100 sessions open, so MinOpened is lowered with the cap.
func sessionPoolConfig(maxSessions int) spanner.SessionPoolConfig {
	cfg := spanner.DefaultSessionPoolConfig
	if maxSessions <= 0 {
		return cfg
	}
	cfg.MaxOpened = uint64(maxSessions)
	if cfg.MinOpened > cfg.MaxOpened {
		cfg.MinOpened = cfg.MaxOpened
	}
	return cfg
}

type spannerClient struct {
	client *spanner.Client
}

func (c *spannerClient) ExecuteRead(ctx context.Context, query string, params map[string]any) (Result, error) {
	iter := c.client.Single().Query(ctx, spanner.Statement{SQL: query, Params: params})
	defer iter.Stop()
	return consumeRows(iter)
}

func (c *spannerClient) ExecuteWrite(ctx context.Context, query string, params map[string]any) (Result, error) {
	var affected int64
	_, err := c.client.ReadWriteTransaction(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) error {
		n, err := txn.Update(ctx, spanner.Statement{SQL: query, Params: params})
		if err != nil {
			return err
		}
		affected = n
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Records: []Record{{"rowCount": affected}}}, nil
}

func (c *spannerClient) VerifyConnectivity(ctx context.Context) error {
	iter := c.client.Single().Query(ctx, spanner.NewStatement("SELECT 1"))
	defer iter.Stop()
	_, err := consumeRows(iter)
	return err
}

func (c *spannerClient) Close(context.Context) error {
	c.client.Close()
	return nil
}

func consumeRows(iter *spanner.RowIterator) (Result, error) {
	var records []Record
	for {
		row, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return Result{}, err
		}
		record, err := decodeRow(row)
		if err != nil {
			return Result{}, err
		}
		records = append(records, record)
	}
	return Result{Records: records}, nil
}

// decodeRow maps scalar columns to native Go values. NULL becomes nil and
// non-scalar columns are kept as spanner.GenericColumnValue.
func decodeRow(row *spanner.Row) (Record, error) {
	names := row.ColumnNames()
	record := make(Record, len(names))
	for i, name := range names {
		var col spanner.GenericColumnValue
		if err := row.Column(i, &col); err != nil {
			return nil, fmt.Errorf("read column %s: %w", name, err)
		}
		value, err := decodeColumn(col)
		if err != nil {
			return nil, fmt.Errorf("decode column %s: %w", name, err)
		}
		record[name] = value
	}
	return record, nil
}

func decodeColumn(col spanner.GenericColumnValue) (any, error) {
	switch col.Type.GetCode() {
	case sppb.TypeCode_INT64:
		var v spanner.NullInt64
		if err := col.Decode(&v); err != nil {
			return nil, err
		}
		if !v.Valid {
			return nil, nil
		}
		return v.Int64, nil
	case sppb.TypeCode_STRING:
		var v spanner.NullString
		if err := col.Decode(&v); err != nil {
			return nil, err
		}
		if !v.Valid {
			return nil, nil
		}
		return v.StringVal, nil
	case sppb.TypeCode_FLOAT64:
		var v spanner.NullFloat64
		if err := col.Decode(&v); err != nil {
			return nil, err
		}
		if !v.Valid {
			return nil, nil
		}
		return v.Float64, nil
	case sppb.TypeCode_BOOL:
		var v spanner.NullBool
		if err := col.Decode(&v); err != nil {
			return nil, err
		}
		if !v.Valid {
			return nil, nil
		}
		return v.Bool, nil
	default:
		return col, nil
	}
}
