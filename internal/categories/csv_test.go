package categories

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/checktrack/checktrack/internal/model"
)

func TestRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCategories(&buf, Defaults()))

	got, err := ReadCategories(&buf)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), got)
}

func TestReadCategories_EmptyKindsPresent(t *testing.T) {
	got, err := ReadCategories(strings.NewReader("kind,item\nbank,Deniz Bank\n"))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"Deniz Bank"}, got[0].Items)
	assert.Empty(t, got[1].Items)
	assert.Equal(t, "İş Grubu", got[2].Name)
}

func TestReadCategories_UnknownKind(t *testing.T) {
	_, err := ReadCategories(strings.NewReader("kind,item\ncurrency,TRY\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestParseCategoryKindAliases(t *testing.T) {
	for _, s := range []string{"businessGroup", "business-group", "business_group"} {
		k, err := model.ParseCategoryKind(s)
		require.NoError(t, err)
		assert.Equal(t, model.CategoryBusinessGroup, k)
	}
}
