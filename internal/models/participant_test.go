package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParticipantCodeRoundTrip(t *testing.T) {
	assert.Equal(t, "R19001001", FormatParticipantCode(CategoryRagam, 1001))
	assert.Equal(t, "K19000042", FormatParticipantCode(CategoryKalotsavam, 42))

	cases := map[string]int64{
		"R19001001": 1001,
		"k19000042": 42,
		" 1000 ":    1000,
	}
	for code, want := range cases {
		id, err := ParseParticipantCode(code)
		require.NoError(t, err, code)
		assert.Equal(t, want, id, code)
	}

	for _, bad := range []string{"", "R19", "X19000001", "R19-5", "0"} {
		_, err := ParseParticipantCode(bad)
		assert.Error(t, err, bad)
	}
}

func TestRegistrationTypestate(t *testing.T) {
	admin := Admin{ID: 1, Name: "Admin"}

	p := Participant{ID: 1001, Registration: RestoreRegistration(1001, nil)}
	token, ok := p.NotVerified()
	require.True(t, ok)
	assert.Equal(t, int64(1001), token.ID())
	assert.False(t, p.Registration.IsVerified())

	p.Registration = token.Verify(admin)
	_, ok = p.NotVerified()
	assert.False(t, ok)
	by, ok := p.VerifiedBy()
	require.True(t, ok)
	assert.Equal(t, admin, by)

	restored := Participant{ID: 1000, Registration: RestoreRegistration(1000, &admin)}
	_, ok = restored.NotVerified()
	assert.False(t, ok)
	assert.True(t, restored.Registration.IsVerified())
}

func TestNotVerifiedTokenMustMatchParticipant(t *testing.T) {
	p := Participant{ID: 7, Registration: RestoreRegistration(8, nil)}
	_, ok := p.NotVerified()
	assert.False(t, ok)
	assert.True(t, NotVerified{}.IsZero())
}

func TestEnumCodesAndJSON(t *testing.T) {
	for code, want := range []Gender{GenderMale, GenderFemale, GenderOther} {
		got, err := GenderFromCode(int16(code))
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, int16(code), want.Code())
	}
	_, err := GenderFromCode(3)
	assert.Error(t, err)

	c, err := CategoryFromCode(1)
	require.NoError(t, err)
	assert.Equal(t, CategoryKalotsavam, c)

	var info ParticipantInfo
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Asha","gender":"female","email":"a@x.in","phone":"99","category":"ragam"}`), &info))
	assert.Equal(t, GenderFemale, info.Gender)
	assert.Equal(t, CategoryRagam, info.Category)

	assert.Error(t, json.Unmarshal([]byte(`{"gender":"unknown"}`), &info))
}
