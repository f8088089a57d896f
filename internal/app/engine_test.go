package app

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/corey/goodadvice/internal/domain/lexicon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_ExtractAndValidate(t *testing.T) {
	e, err := NewEngine(lexicon.DefaultVocabulary, lexicon.DefaultLanguages, nil)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"btc", "eth"}, e.Extract("I hold (BTC) and some eth."))
	assert.True(t, e.IsValid("english"))
	assert.False(t, e.IsValid("german"))
}

func TestEngine_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coins.txt")
	require.NoError(t, os.WriteFile(path, []byte("btc\n"), 0644))

	e, err := NewEngine([]string{"btc"}, lexicon.DefaultLanguages, nil)
	require.NoError(t, err)
	assert.Empty(t, e.Extract("buy (sol) now"))

	require.NoError(t, os.WriteFile(path, []byte("btc\nsol\n"), 0644))
	require.NoError(t, e.Reload(path))
	assert.Equal(t, []string{"sol"}, e.Extract("buy (sol) now"))
}

func TestEngine_FailedReloadKeepsPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coins.txt")
	require.NoError(t, os.WriteFile(path, []byte("# emptied by mistake\n"), 0644))

	e, err := NewEngine([]string{"btc"}, lexicon.DefaultLanguages, nil)
	require.NoError(t, err)
	before := e.Extractor()

	assert.Error(t, e.Reload(path))
	assert.Same(t, before, e.Extractor())
	assert.Equal(t, []string{"btc"}, e.Extract("(btc)"))
}

func TestEngine_ReloadDuringExtract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coins.txt")
	require.NoError(t, os.WriteFile(path, []byte("btc\neth\n"), 0644))

	e, err := NewEngine([]string{"btc"}, lexicon.DefaultLanguages, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				got := e.Extract("(btc) and eth.")
				assert.Contains(t, got, "btc")
			}
		}()
	}
	for i := 0; i < 5; i++ {
		require.NoError(t, e.Reload(path))
	}
	wg.Wait()
}

func TestLoadVocabulary(t *testing.T) {
	v, err := LoadVocabulary("")
	require.NoError(t, err)
	assert.Equal(t, lexicon.DefaultVocabulary, v)

	_, err = LoadVocabulary(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
