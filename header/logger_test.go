package header

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParse_LogsSkippedFunctions(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(zap.NewNop()) })

	parseHeader(t, `
static inline int nobody(void);
static inline int body(void) { return 0; }
`)

	skipped := logs.FilterMessage("skipping inline-only function without a definition").All()
	require.Len(t, skipped, 1)
	assert.Equal(t, "nobody", skipped[0].ContextMap()["function"])
	assert.Equal(t, int64(2), skipped[0].ContextMap()["line"])

	parsed := logs.FilterMessage("parsed header").All()
	require.Len(t, parsed, 1)
	assert.Equal(t, int64(1), parsed[0].ContextMap()["functions"])
}
