package patterns

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "bill-extraction-service/pkg/errors"
)

const electricaJSON = `{
  "name": "Electrica Furnizare",
  "bill_type": "electricity",
  "priority": 10,
  "fields": [
    {"name": "amount", "patterns": [{"regex": "Total de plata:\\s*([0-9.,]+)"}]}
  ]
}`

const engieYAML = `name: Engie Romania
bill_type: gas
priority: 5
fields:
  - name: amount
    patterns:
      - regex: 'De plata:\s*([0-9.,]+)'
`

const futureJSON = `{
  "name": "Forward Compatible",
  "experimental": {"retry": 3},
  "fields": [
    {"name": "amount", "patterns": [{"regex": "Suma:\\s*([0-9.,]+)", "hint": "x"}]}
  ]
}`

const userCustomJSON = `{
  "name": "Asociatia Bloc A1",
  "bill_type": "maintenance",
  "fields": [
    {"name": "amount", "patterns": [{"regex": "Intretinere:\\s*([0-9.,]+)"}]}
  ]
}`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func fixtureDirs(t *testing.T) (adminDir, userDir string) {
	t.Helper()
	adminDir = t.TempDir()
	userDir = t.TempDir()

	writeFile(t, adminDir, "broken.json", `{"name": "x",`)
	writeFile(t, adminDir, "electrica.json", electricaJSON)
	writeFile(t, adminDir, "engie.yaml", engieYAML)
	writeFile(t, adminDir, "future.json", futureJSON)
	writeFile(t, adminDir, "nofields.json", `{"name": "x"}`)
	writeFile(t, adminDir, "README.md", "not a pattern")

	u1 := filepath.Join(userDir, "u1")
	require.NoError(t, os.MkdirAll(u1, 0755))
	writeFile(t, u1, "custom.json", userCustomJSON)

	return adminDir, userDir
}

func TestRepositoryLoadAll(t *testing.T) {
	adminDir, userDir := fixtureDirs(t)
	repo := NewRepository(adminDir, userDir, nil)

	loaded, err := repo.LoadAll("u1")
	require.NoError(t, err)
	require.Len(t, loaded, 4)

	ids := make([]string, len(loaded))
	for i, l := range loaded {
		ids[i] = l.ID
	}
	// Admin tier first in file name order, then the user's patterns.
	assert.Equal(t, []string{"electrica", "engie", "future", "user-u1-custom"}, ids)

	for _, l := range loaded[:3] {
		assert.Equal(t, TierAdmin, l.Source.Tier)
		assert.Empty(t, l.Source.UserID)
	}
	assert.Equal(t, TierUser, loaded[3].Source.Tier)
	assert.Equal(t, "u1", loaded[3].Source.UserID)
	assert.Equal(t, "Asociatia Bloc A1", loaded[3].Pattern.Name)
}

func TestRepositoryYAMLPattern(t *testing.T) {
	adminDir, userDir := fixtureDirs(t)
	repo := NewRepository(adminDir, userDir, nil)

	loaded, err := repo.LoadAll("")
	require.NoError(t, err)
	require.Len(t, loaded, 3)

	engie := loaded[1]
	assert.Equal(t, "Engie Romania", engie.Pattern.Name)

	values, matched := engie.Pattern.Apply("De plata: 120,50")
	assert.Equal(t, 1, matched)
	assert.Equal(t, "120,50", values["amount"])
}

func TestRepositorySkipsMalformedFiles(t *testing.T) {
	adminDir, userDir := fixtureDirs(t)
	repo := NewRepository(adminDir, userDir, nil)

	report := repo.LoadWithReport("u1")
	assert.Len(t, report.Loaded, 4, "malformed files must not abort the load")
	require.Len(t, report.Skipped, 2)
	for _, skip := range report.Skipped {
		assert.Equal(t, apperrors.CategoryPattern, skip.Category)
	}
}

func TestRepositoryUnknownKeysIgnored(t *testing.T) {
	adminDir, userDir := fixtureDirs(t)
	repo := NewRepository(adminDir, userDir, nil)

	loaded, err := repo.LoadAll("")
	require.NoError(t, err)

	var future *Loaded
	for i := range loaded {
		if loaded[i].ID == "future" {
			future = &loaded[i]
		}
	}
	require.NotNil(t, future, "pattern with unknown keys should load")
	assert.Equal(t, "Forward Compatible", future.Pattern.Name)
}

func TestRepositoryMissingDirectories(t *testing.T) {
	repo := NewRepository(filepath.Join(t.TempDir(), "absent"), "", nil)

	loaded, err := repo.LoadAll("u1")
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestRepositoryNoUserTierWithoutUserID(t *testing.T) {
	adminDir, userDir := fixtureDirs(t)
	repo := NewRepository(adminDir, userDir, nil)

	loaded, err := repo.LoadAll("")
	require.NoError(t, err)
	for _, l := range loaded {
		assert.Equal(t, TierAdmin, l.Source.Tier)
	}
}

func TestCacheInvalidatesOnFileChange(t *testing.T) {
	adminDir := t.TempDir()
	writeFile(t, adminDir, "electrica.json", electricaJSON)

	repo := NewRepository(adminDir, "", nil)
	cache, err := NewCache(repo)
	require.NoError(t, err)
	defer cache.Close()

	loaded, err := cache.LoadAll("")
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	writeFile(t, adminDir, "engie.yaml", engieYAML)

	require.Eventually(t, func() bool {
		loaded, err := cache.LoadAll("")
		return err == nil && len(loaded) == 2
	}, 2*time.Second, 25*time.Millisecond, "cache should pick up the new pattern file")
}

func TestCacheExplicitInvalidate(t *testing.T) {
	adminDir := t.TempDir()
	writeFile(t, adminDir, "electrica.json", electricaJSON)

	repo := NewRepository(adminDir, "", nil)
	cache, err := NewCache(repo)
	require.NoError(t, err)
	defer cache.Close()

	_, err = cache.LoadAll("")
	require.NoError(t, err)

	// Bypass the watcher entirely; explicit invalidation must also work.
	writeFile(t, adminDir, "extra.json", userCustomJSON)
	cache.Invalidate()

	loaded, err := cache.LoadAll("")
	require.NoError(t, err)
	assert.Len(t, loaded, 2)
}
