package categories

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/checktrack/checktrack/internal/model"
)

var (
	admin = model.User{ID: "usr-0001", Username: "altay", Permissions: model.FullPermissions()}
	clerk = model.User{ID: "usr-0002", Username: "veli", Permissions: model.Permissions{Add: true}}
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	svc, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Defaults(), svc.All())

	banks, ok := svc.Get(model.CategoryBank)
	require.True(t, ok)
	assert.Contains(t, banks.Items, "Ziraat Bankası")
}

func TestAddRemovePersist(t *testing.T) {
	dir := t.TempDir()
	svc, err := Load(dir)
	require.NoError(t, err)

	require.NoError(t, svc.Add(admin, model.CategoryBank, " Vakıfbank "))
	assert.ErrorIs(t, svc.Add(admin, model.CategoryBank, "Vakıfbank"), ErrDuplicateItem)
	require.NoError(t, svc.Remove(admin, model.CategoryCompany, "ONURAY İNŞAAT"))
	assert.ErrorIs(t, svc.Remove(admin, model.CategoryCompany, "ONURAY İNŞAAT"), ErrItemNotFound)

	_, err = os.Stat(filepath.Join(dir, FileName))
	require.NoError(t, err)

	reloaded, err := Load(dir)
	require.NoError(t, err)
	banks, _ := reloaded.Get(model.CategoryBank)
	assert.Equal(t, "Vakıfbank", banks.Items[len(banks.Items)-1])
	companies, _ := reloaded.Get(model.CategoryCompany)
	assert.NotContains(t, companies.Items, "ONURAY İNŞAAT")
}

func TestReplace(t *testing.T) {
	svc, err := Load(t.TempDir())
	require.NoError(t, err)

	c, err := svc.Replace(admin, model.CategoryBusinessGroup, []string{"KULU", " ", "KULU", "MERAM"})
	require.NoError(t, err)
	assert.Equal(t, []string{"KULU", "MERAM"}, c.Items)
	assert.Equal(t, "İş Grubu", c.Name)
}

func TestChangesRequireManageCategories(t *testing.T) {
	svc, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Add(clerk, model.CategoryBank, "X"), model.ErrForbidden)
	assert.ErrorIs(t, svc.Remove(clerk, model.CategoryBank, "Deniz Bank"), model.ErrForbidden)
	_, err = svc.Replace(clerk, model.CategoryBank, nil)
	assert.ErrorIs(t, err, model.ErrForbidden)

	assert.Equal(t, Defaults(), svc.All())
}

func TestAllReturnsCopies(t *testing.T) {
	svc, err := Load(t.TempDir())
	require.NoError(t, err)

	all := svc.All()
	all[0].Items[0] = "mutated"
	assert.Equal(t, Defaults(), svc.All())
}
