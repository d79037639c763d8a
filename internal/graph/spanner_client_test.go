package graph

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/spanner"
	sppb "cloud.google.com/go/spanner/apiv1/spannerpb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func column(code sppb.TypeCode, value *structpb.Value) spanner.GenericColumnValue {
	return spanner.GenericColumnValue{Type: &sppb.Type{Code: code}, Value: value}
}

func TestDecodeColumn(t *testing.T) {
	cases := []struct {
		name string
		col  spanner.GenericColumnValue
		want any
	}{
		{"int64", column(sppb.TypeCode_INT64, structpb.NewStringValue("47")), int64(47)},
		{"null int64", column(sppb.TypeCode_INT64, structpb.NewNullValue()), nil},
		{"string", column(sppb.TypeCode_STRING, structpb.NewStringValue("NODO")), "NODO"},
		{"float64", column(sppb.TypeCode_FLOAT64, structpb.NewNumberValue(1.5)), 1.5},
		{"bool", column(sppb.TypeCode_BOOL, structpb.NewBoolValue(true)), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := decodeColumn(tc.col)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecodeColumnKeepsUnknownTypes(t *testing.T) {
	col := column(sppb.TypeCode_JSON, structpb.NewStringValue(`{"a":1}`))
	got, err := decodeColumn(col)
	require.NoError(t, err)
	assert.IsType(t, spanner.GenericColumnValue{}, got)
}

func TestDecodeColumnRejectsMalformedInt(t *testing.T) {
	_, err := decodeColumn(column(sppb.TypeCode_INT64, structpb.NewStringValue("forty")))
	assert.Error(t, err)
}

func TestSessionPoolConfig(t *testing.T) {
	cfg := sessionPoolConfig(10)
	assert.Equal(t, uint64(10), cfg.MaxOpened)
	assert.LessOrEqual(t, cfg.MinOpened, cfg.MaxOpened)

	cfg = sessionPoolConfig(400)
	assert.Equal(t, uint64(400), cfg.MaxOpened)
	assert.Equal(t, spanner.DefaultSessionPoolConfig.MinOpened, cfg.MinOpened)

	assert.Equal(t, spanner.DefaultSessionPoolConfig.MaxOpened, sessionPoolConfig(0).MaxOpened)
}

func TestNewSpannerClientSmallSessionPool(t *testing.T) {
	// Nothing listens on the emulator address, so only connectivity can fail.
	t.Setenv("SPANNER_EMULATOR_HOST", "localhost:1")
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	client, err := NewSpannerClient(ctx, SpannerOptions{
		Database:    "projects/p/instances/i/databases/d",
		MaxSessions: 10,
	})
	if client != nil {
		_ = client.Close(context.Background())
	}
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SessionPoolConfig")
	assert.Contains(t, err.Error(), "verify graph connectivity")
}
