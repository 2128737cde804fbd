package agentprofile

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePIN(t *testing.T) {
	for i := 0; i < 1000; i++ {
		pin := GeneratePIN()
		require.Len(t, pin, 4)
		n, err := strconv.Atoi(pin)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 1111)
		assert.LessOrEqual(t, n, 9999)
		assert.NotEqual(t, "0000", pin)
		assert.NotEqual(t, "1234", pin)
	}
}

func TestNew_RequiresPartner(t *testing.T) {
	_, err := New("New", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPartnerRequired)
}

func TestDefaultNameFromPartner(t *testing.T) {
	p, err := New(DefaultName, 1)
	require.NoError(t, err)
	p.DefaultNameFromPartner("Jane Wanjiku")
	assert.Equal(t, "Jane Wanjiku", p.Name())

	p, err = New("Duka la Jane", 1)
	require.NoError(t, err)
	p.DefaultNameFromPartner("Jane Wanjiku")
	assert.Equal(t, "Duka la Jane", p.Name())
}

func TestValidateGeo(t *testing.T) {
	p, err := New("Duka la Jane", 1)
	require.NoError(t, err)

	err = p.ValidateGeo()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGeoRequired)

	p.SetCoordinates(-1.2921, 36.8219)
	require.NoError(t, p.ValidateGeo())
}

func TestValidateForAgentType(t *testing.T) {
	p, err := New("Duka la Jane", 1)
	require.NoError(t, err)

	err = p.ValidateForAgentType("Institution")
	assert.ErrorIs(t, err, ErrWorkersRequired)
	p.SetWorkerCounts(2, 0)
	assert.ErrorIs(t, p.ValidateForAgentType("Institution"), ErrWorkersRequired)
	p.SetWorkerCounts(0, 4)
	assert.ErrorIs(t, p.ValidateForAgentType("Institution"), ErrWorkersRequired)
	p.SetWorkerCounts(2, 4)
	require.NoError(t, p.ValidateForAgentType("Institution"))

	err = p.ValidateForAgentType("Field")
	assert.ErrorIs(t, err, ErrBusinessRequired)
	p.SetBusiness("Duka la Jane", []int64{3})
	require.NoError(t, p.ValidateForAgentType("Field"))

	// Unknown categories carry no extra requirements.
	require.NoError(t, p.ValidateForAgentType("Roaming"))
}
