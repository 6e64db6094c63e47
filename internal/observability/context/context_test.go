package context

import (
	stdctx "context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(stdctx.Background(), " 01HZX ")
	assert.Equal(t, "01HZX", RequestIDFromContext(ctx))
	assert.Empty(t, RequestIDFromContext(stdctx.Background()))
}

func TestSyncRun(t *testing.T) {
	ctx := WithSyncRun(stdctx.Background(), "pennylane", "42")
	provider, run := SyncRunFromContext(ctx)
	assert.Equal(t, "pennylane", provider)
	assert.Equal(t, "42", run)
}
