package summary_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkbridge/native-body-rebuilder/internal/rlog"
	"github.com/arkbridge/native-body-rebuilder/internal/summary"
)

const napiCreateInt32Doc = `{
  "hap_name": "entry",
  "so_name": "libentry.so",
  "module_name": "entry",
  "functions": [
    {
      "name": "Add",
      "params": {"0": "napi_env", "1": "napi_callback_info"},
      "instructions": [
        {
          "type": "Call",
          "callsite": "cs0",
          "target": "napi_get_cb_info",
          "operands": ["p0", "p1"],
          "rets": {"%arg0": "3", "%arg1": "3"}
        },
        {
          "type": "Call",
          "callsite": "cs1",
          "target": "napi_create_int32",
          "operands": ["p0", "long 7"],
          "rets": {"%result": "-1"}
        },
        {
          "type": "Ret",
          "operand": "%result"
        }
      ]
    }
  ]
}`

func TestLoadDocumentParsesCallReturnAndRealArgs(t *testing.T) {
	logger := rlog.New(&bytes.Buffer{})

	mod, err := summary.LoadDocument([]byte(napiCreateInt32Doc), logger)
	require.NoError(t, err)

	assert.Equal(t, "entry", mod.ModuleName)
	assert.Equal(t, "libentry.so", mod.SoName)

	fn := mod.Func("Add")
	require.NotNil(t, fn)
	require.Len(t, fn.Instructions, 3)

	args := fn.RealArgs()
	require.Len(t, args, 2)
	assert.Equal(t, "%arg0", args[0].Token())
	assert.Equal(t, "%arg1", args[1].Token())

	ret, ok := fn.Instructions[2].(*summary.Return)
	require.True(t, ok)
	assert.Equal(t, "%result", ret.Operand.Token())
}

func TestLoadDocumentRejectsMalformedConstantAtFunctionScope(t *testing.T) {
	const doc = `{
	  "hap_name": "entry", "so_name": "lib.so", "module_name": "entry",
	  "functions": [
	    {
	      "name": "Broken",
	      "params": {},
	      "instructions": [
	        {"type": "Call", "target": "napi_create_int32", "operands": ["long nope"], "rets": {}}
	      ]
	    },
	    {
	      "name": "Ok",
	      "params": {},
	      "instructions": []
	    }
	  ]
	}`

	var buf bytes.Buffer
	logger := rlog.New(&buf)

	mod, err := summary.LoadDocument([]byte(doc), logger)
	require.NoError(t, err)

	assert.Nil(t, mod.Func("Broken"))
	assert.NotNil(t, mod.Func("Ok"))
	assert.Equal(t, 1, logger.WarnCount())
}
