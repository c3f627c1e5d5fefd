package plonk

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/AYUSHMIT/jellyfish/circuit"
	"github.com/AYUSHMIT/jellyfish/test"
)

func TestProofRoundTrip(t *testing.T) {
	assert := assert.New(t)

	ccs := buildMulCircuit(t, 4, 4, 16)
	pk, _ := setupKeys(t, ccs)
	proof, err := Prove(ccs, pk)
	assert.NoError(err)

	var buf bytes.Buffer
	written, err := proof.WriteTo(&buf)
	assert.NoError(err)
	assert.EqualValues(buf.Len(), written)

	var back Proof
	read, err := back.ReadFrom(&buf)
	assert.NoError(err)
	assert.Equal(written, read)
	assert.True(cmp.Equal(proof, &back))

	// raw encoding carries the same data
	buf.Reset()
	_, err = proof.WriteRawTo(&buf)
	assert.NoError(err)
	var backRaw Proof
	_, err = backRaw.ReadFrom(&buf)
	assert.NoError(err)
	assert.True(cmp.Equal(proof, &backRaw))
}

func TestVerifyingKeyRoundTrip(t *testing.T) {
	assert := assert.New(t)

	for _, lookup := range []bool{false, true} {
		var ccs *circuit.CS
		if lookup {
			ccs = buildRangeCircuit(t, 4, 13)
		} else {
			ccs = buildMulCircuit(t, 4, 4, 16)
		}
		_, vk := setupKeys(t, ccs)

		var buf bytes.Buffer
		written, err := vk.WriteTo(&buf)
		assert.NoError(err)

		var back VerifyingKey
		read, err := back.ReadFrom(&buf)
		assert.NoError(err)
		assert.Equal(written, read)
		assert.True(cmp.Equal(vk, &back))
	}
}

func TestProvingKeyRoundTrip(t *testing.T) {
	assert := assert.New(t)

	ccs := buildRangeCircuit(t, 4, 13, 7)
	pk, _ := setupKeys(t, ccs)

	var buf bytes.Buffer
	written, err := pk.WriteTo(&buf)
	assert.NoError(err)

	var back ProvingKey
	read, err := back.ReadFrom(bytes.NewReader(buf.Bytes()))
	assert.NoError(err)
	assert.Equal(written, read)

	// re-serializing the decoded key reproduces the bytes
	var buf2 bytes.Buffer
	_, err = back.WriteTo(&buf2)
	assert.NoError(err)
	assert.Equal(buf.Bytes(), buf2.Bytes())

	// the KZG part is reattached from the SRS, after which proving works
	srs, err := test.NewKZGSRS(ccs.Size() + 3)
	assert.NoError(err)
	back.Kzg = srs.Pk
	proof, err := Prove(ccs, &back)
	assert.NoError(err)
	assert.NoError(Verify(proof, back.Vk, nil))
}
