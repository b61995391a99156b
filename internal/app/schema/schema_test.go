package schema

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriverProfileDiscriminatorIsStable(t *testing.T) {
	want := [DiscriminatorSize]byte{116, 172, 75, 50, 68, 157, 48, 16}

	for i := 0; i < 3; i++ {
		assert.Equal(t, want, AccountDiscriminator(RecordDriverProfile))
	}
}

func TestDiscriminatorMatchesSha256Prefix(t *testing.T) {
	tests := []struct {
		namespace string
		name      string
	}{
		{NamespaceAccount, RecordPlatform},
		{NamespaceAccount, RecordLicensePlateMapping},
		{NamespaceAccount, RecordReview},
		{NamespaceGlobal, RequestRegisterPlatform},
		{NamespaceGlobal, RequestRegisterDriver},
		{NamespaceGlobal, RequestLeaveReview},
	}

	for _, tt := range tests {
		t.Run(tt.namespace+":"+tt.name, func(t *testing.T) {
			sum := sha256.Sum256([]byte(tt.namespace + ":" + tt.name))
			var want [DiscriminatorSize]byte
			copy(want[:], sum[:DiscriminatorSize])

			assert.Equal(t, want, Discriminator(tt.namespace, tt.name))
		})
	}
}

func TestKnownRequestDiscriminators(t *testing.T) {
	assert.Equal(t, [DiscriminatorSize]byte{115, 120, 8, 254, 177, 20, 8, 168}, RequestDiscriminator(RequestRegisterPlatform))
	assert.Equal(t, [DiscriminatorSize]byte{117, 81, 110, 222, 0, 51, 250, 47}, RequestDiscriminator(RequestLeaveReview))
}

func TestNamespacesProduceDifferentTags(t *testing.T) {
	assert.NotEqual(t,
		Discriminator(NamespaceAccount, "leave_review"),
		Discriminator(NamespaceGlobal, "leave_review"))
}

func TestRecordSpaceMatchesProgramAllocation(t *testing.T) {
	platform, ok := Satch.Record(RecordPlatform)
	require.True(t, ok)
	assert.Equal(t, 8+32+32+1+8, platform.Space())

	driver, ok := Satch.Record(RecordDriverProfile)
	require.True(t, ok)
	assert.Equal(t, 8+32+32+(4+28)+(4+32)+8+8, driver.Space())

	review, ok := Satch.Record(RecordReview)
	require.True(t, ok)
	assert.Equal(t, -1, review.Space())
	assert.Equal(t, 8+32+32+1+4, review.MinSize())
}

func TestOffsetOfFixedPrefixFields(t *testing.T) {
	driver, _ := Satch.Record(RecordDriverProfile)

	offset, ok := driver.Offset("platform")
	require.True(t, ok)
	assert.Equal(t, 40, offset)

	_, ok = driver.Offset("rating_sum")
	assert.False(t, ok, "rating_sum follows variable-width text")

	_, ok = driver.Offset("missing")
	assert.False(t, ok)
}

func TestLookupByDiscriminator(t *testing.T) {
	rs, ok := Satch.RecordByDiscriminator(AccountDiscriminator(RecordReview))
	require.True(t, ok)
	assert.Equal(t, RecordReview, rs.Name)

	rq, ok := Satch.RequestByDiscriminator(RequestDiscriminator(RequestRegisterDriver))
	require.True(t, ok)
	assert.Len(t, rq.Accounts, 6)

	_, ok = Satch.RecordByDiscriminator([DiscriminatorSize]byte{1, 2, 3})
	assert.False(t, ok)
}

func TestRecordsSortedByName(t *testing.T) {
	records := Satch.Records()
	require.Len(t, records, 4)
	assert.Equal(t, RecordDriverProfile, records[0].Name)
	assert.Equal(t, RecordReview, records[3].Name)
}
