package db

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringArray_Scan(t *testing.T) {
	var a StringArray

	require.NoError(t, a.Scan([]byte(`["Go","SQL"]`)))
	assert.Equal(t, StringArray{"Go", "SQL"}, a)

	require.NoError(t, a.Scan(`["Python"]`))
	assert.Equal(t, StringArray{"Python"}, a)

	require.NoError(t, a.Scan(nil))
	assert.Equal(t, StringArray{}, a)

	assert.Error(t, a.Scan(42))
}

func TestStringArray_Value(t *testing.T) {
	v, err := StringArray(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)

	v, err = StringArray{"React"}.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `["React"]`, string(v.([]byte)))
}

func TestResourceList_RoundTrip(t *testing.T) {
	in := ResourceList{{Title: "The Odin Project", URL: "https://www.theodinproject.com", Type: "course"}}

	v, err := in.Value()
	require.NoError(t, err)

	var out ResourceList
	require.NoError(t, out.Scan(v))
	assert.Equal(t, in, out)

	require.NoError(t, out.Scan(nil))
	assert.Empty(t, out)
}

func TestUser_ToTypes(t *testing.T) {
	u := &User{
		ID:           uuid.New(),
		Name:         "Ada",
		Email:        "ada@example.com",
		Education:    "BSc Mathematics",
		Skills:       StringArray{"Python"},
		PasswordHash: "secret-hash",
		PasswordSet:  true,
	}

	got := u.ToTypes()
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, []string{"Python"}, got.Skills)
	assert.Equal(t, []string{}, got.Interests, "nil arrays become empty")
	assert.False(t, got.ProfileCompleted, "no interests yet")

	u.Interests = StringArray{"data"}
	assert.True(t, u.ToTypes().ProfileCompleted)

	var nilUser *User
	assert.Nil(t, nilUser.ToTypes())
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c\\d`, escapeLike(`c\d`))
	assert.Equal(t, "ui/ux", escapeLike("ui/ux"))
}

func TestSchemaEmbedded(t *testing.T) {
	for _, table := range []string{"users", "careers", "recommendations"} {
		assert.Contains(t, schemaSQL, "CREATE TABLE IF NOT EXISTS "+table)
	}
}
