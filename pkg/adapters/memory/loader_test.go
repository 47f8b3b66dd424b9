package memory_test

import (
	"testing"

	"github.com/aretw0/typeguard/pkg/adapters/memory"
	contract "github.com/aretw0/typeguard/pkg/ports/tests"
	"github.com/aretw0/typeguard/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryLoader_Contract(t *testing.T) {
	data := map[string]string{
		"clamp": "name: clamp\nparams: [{name: x, type: int}]\n",
		"greet": `{"name": "greet", "params": [{"name": "who", "type": "str"}]}`,
	}

	bytesData := make(map[string][]byte)
	for k, v := range data {
		bytesData[k] = []byte(v)
	}

	contract.SignatureLoaderContractTest(t, memory.NewLoader(data), bytesData)
}

func TestNewFromSignatures(t *testing.T) {
	loader, err := memory.NewFromSignatures(schema.SignatureFile{
		Name: "clamp",
		Params: []schema.ParamFile{
			{Name: "x", Type: "int"},
			{Name: "lo", Type: "optional[int]", HasDefault: true},
		},
		Return: "int",
	})
	require.NoError(t, err)

	raw, err := loader.Get("clamp")
	require.NoError(t, err)

	sf, err := schema.DecodeSignature(raw)
	require.NoError(t, err)
	assert.Equal(t, "clamp", sf.Name)
	require.Len(t, sf.Params, 2)
	assert.False(t, sf.Params[0].HasDefault)
	assert.True(t, sf.Params[1].HasDefault)
	assert.Nil(t, sf.Params[1].Default)

	_, err = memory.NewFromSignatures(schema.SignatureFile{})
	assert.Error(t, err)
}
